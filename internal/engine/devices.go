package engine

import (
	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/config"
	"github.com/roach88/xmsync/internal/input"
	"github.com/roach88/xmsync/internal/resolve"
	"github.com/roach88/xmsync/internal/value"
)

const (
	fieldDeviceType   = "deviceType"
	fieldEmailAddress = "emailAddress"
	fieldPhoneNumber  = "phoneNumber"
	fieldSequence     = "sequence"
)

// deviceSlot is a configured slot with its sub-fields bound for the run.
type deviceSlot struct {
	*config.DeviceSlot
	subfields []resolve.Field
}

// devices fans each row out into one record per slot whose input cell is
// non-empty. Sub-fields are resolved per slot; their <sub>Sync flags only
// decide whether they join the field list.
//
// When sequence is synced, the record carries the device's 1-based position
// among the owner's emitted devices and the slot's own sequence value is
// dropped. sequenceInitial is still taken from configuration.
func (p *processor) devices(rows []input.Row) []value.Object {
	cat := p.ec.Entity.Catalog()
	ownerSpec, _ := cat.Lookup(catalog.FieldOwner)
	owner := resolve.NewField(ownerSpec, p.ec.Setting(catalog.FieldOwner), p.cols)

	slots := p.bindSlots(cat)
	synced := p.syncedSubfields()
	p.deviceFields(cat, slots, synced)

	ordinals := make(map[string]int)
	var records []value.Object
	for i, row := range rows {
		ownerRes := owner.Resolve(row)
		ownerText, hasOwner := "", false
		if ownerRes.Value != nil {
			ownerText, hasOwner = value.Text(ownerRes.Value)
		}

		for _, slot := range slots {
			raw, ok := row.Get(slot.Input)
			if !ok || value.IsEmpty(raw) {
				continue
			}

			rec := newRecord()
			apply(rec, catalog.FieldOwner, ownerRes)
			label := slot.Label()
			if hasOwner {
				rec[catalog.FieldTargetName] = value.String(ownerText + "|" + label)
			}
			rec[catalog.FieldName] = value.String(label)
			rec[fieldDeviceType] = value.String(slot.Type())
			if slot.IsEmail() {
				rec[fieldEmailAddress] = raw
			} else {
				rec[fieldPhoneNumber] = raw
			}

			ordinals[ownerText]++
			for _, f := range slot.subfields {
				res := f.Resolve(row)
				if f.Spec.Name == fieldSequence && synced[fieldSequence] {
					res.Value = value.Int(ordinals[ownerText])
				}
				apply(rec, f.Spec.Name, res)
			}

			p.finish(rec, row, i)
			records = append(records, rec)
		}
	}
	return records
}

// bindSlots binds the sub-fields of every configured slot, skipping empty
// entries of the devices list.
func (p *processor) bindSlots(cat catalog.Catalog) []deviceSlot {
	var slots []deviceSlot
	for _, cfg := range p.ec.Devices {
		if cfg == nil {
			continue
		}
		slot := deviceSlot{DeviceSlot: cfg}
		for _, sub := range catalog.DeviceSlotFields {
			spec, _ := cat.Lookup(sub)
			slot.subfields = append(slot.subfields, resolve.NewField(spec, cfg.Fields[sub], p.cols))
		}
		slots = append(slots, slot)
	}
	return slots
}

// syncedSubfields merges the entity-level and slot-level <sub>Sync flags.
func (p *processor) syncedSubfields() map[string]bool {
	synced := make(map[string]bool)
	for _, sub := range catalog.DeviceSlotFields {
		if p.ec.SubfieldSync[sub] {
			synced[sub] = true
		}
	}
	for _, slot := range p.ec.Devices {
		if slot == nil {
			continue
		}
		for sub, on := range slot.Sync {
			if on {
				synced[sub] = true
			}
		}
	}
	return synced
}

// deviceFields adds the device fields active for this run in catalog order.
func (p *processor) deviceFields(cat catalog.Catalog, slots []deviceSlot, synced map[string]bool) {
	if len(slots) == 0 {
		return
	}
	active := map[string]bool{
		catalog.FieldOwner:      true,
		catalog.FieldTargetName: true,
		catalog.FieldName:       true,
		fieldDeviceType:         true,
	}
	for _, slot := range slots {
		if slot.IsEmail() {
			active[fieldEmailAddress] = true
		} else {
			active[fieldPhoneNumber] = true
		}
	}
	for sub := range synced {
		active[sub] = true
	}

	for _, spec := range cat {
		if !spec.Reserved && active[spec.Name] {
			p.fields.add(spec)
		}
	}
}
