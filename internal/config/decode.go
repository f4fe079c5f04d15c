package config

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/mirror"
	"github.com/roach88/xmsync/internal/value"
)

// Setting key suffixes.
const (
	suffixInput   = "Input"
	suffixDefault = "Default"
	suffixInitial = "Initial"
	suffixSync    = "Sync"
)

// entityKeys are the non-field keys allowed in an entity object.
var entityKeys = map[string]bool{
	"sync":       true,
	"inputPath":  true,
	"mirrorMode": true,
	"mirrorTag":  true,
	"include":    true,
	"devices":    true,
}

func decode(v cue.Value) (*Config, error) {
	cfg := &Config{Entities: make(map[catalog.Entity]*EntityConfig)}

	var err error
	if cfg.MirrorTag, err = lookupString(v, "mirrorTag"); err != nil {
		return nil, err
	}
	if cfg.BaseDir, err = lookupString(v, "baseDir"); err != nil {
		return nil, err
	}
	if cfg.Logging.Level, err = lookupString(v, "logging.level"); err != nil {
		return nil, err
	}
	if cfg.Logging.Format, err = lookupString(v, "logging.format"); err != nil {
		return nil, err
	}

	for _, e := range catalog.All {
		ev := v.LookupPath(cue.ParsePath(string(e)))
		if !ev.Exists() {
			continue
		}
		ec, err := decodeEntity(cfg, e, ev)
		if err != nil {
			return nil, err
		}
		cfg.Entities[e] = ec
	}
	return cfg, nil
}

func decodeEntity(cfg *Config, e catalog.Entity, ev cue.Value) (*EntityConfig, error) {
	ec := &EntityConfig{
		Entity:       e,
		SubfieldSync: make(map[string]bool),
	}

	var err error
	if ec.Sync, err = lookupBool(ev, "sync"); err != nil {
		return nil, err
	}
	if ec.InputPath, err = lookupString(ev, "inputPath"); err != nil {
		return nil, err
	}
	if ec.MirrorTag, err = lookupString(ev, "mirrorTag"); err != nil {
		return nil, err
	}
	if ec.MirrorMode, err = decodeMirrorMode(ev.LookupPath(cue.ParsePath("mirrorMode"))); err != nil {
		return nil, err
	}
	if ec.MirrorMode != mirror.Off && !e.Mirrorable() {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s: mirrorMode is not supported and is ignored", e))
	}
	if ec.Include, err = decodeInclude(ev.LookupPath(cue.ParsePath("include"))); err != nil {
		return nil, err
	}

	cat := e.Catalog()
	if ec.Fields, err = decodeSettings(ev, cat.Names()); err != nil {
		return nil, err
	}
	cfg.Warnings = append(cfg.Warnings, unknownSettings(e, ev, cat)...)

	switch e {
	case catalog.Devices:
		for _, sub := range catalog.DeviceSlotFields {
			if ec.SubfieldSync[sub], err = lookupBool(ev, sub+suffixSync); err != nil {
				return nil, err
			}
		}
		if ec.Devices, err = decodeSlots(ev.LookupPath(cue.ParsePath("devices"))); err != nil {
			return nil, err
		}
	case catalog.GroupMembers:
		members := ec.Fields[catalog.FieldMembers]
		if !members.HasInput() && !members.HasDefault() {
			return nil, &LoadError{
				Code:    ErrCodeMembersRequired,
				Message: "groupMembers requires membersInput or membersDefault",
				Pos:     ev.Pos(),
			}
		}
	}

	return ec, nil
}

// decodeSettings reads <name>Input, <name>Default and <name>Initial for
// every name. Only names with at least one setting are kept.
func decodeSettings(v cue.Value, names []string) (map[string]FieldSetting, error) {
	out := make(map[string]FieldSetting)
	for _, name := range names {
		var s FieldSetting
		var err error
		if s.Input, err = lookupString(v, name+suffixInput); err != nil {
			return nil, err
		}
		if s.Default, err = lookupValue(v, name+suffixDefault); err != nil {
			return nil, err
		}
		if s.Initial, err = lookupValue(v, name+suffixInitial); err != nil {
			return nil, err
		}
		if s.HasInput() || s.HasDefault() || s.HasInitial() {
			out[name] = s
		}
	}
	return out, nil
}

// unknownSettings reports setting keys that match no catalog field.
func unknownSettings(e catalog.Entity, ev cue.Value, cat catalog.Catalog) []string {
	iter, err := ev.Fields()
	if err != nil {
		return nil
	}

	var warnings []string
	for iter.Next() {
		label := iter.Label()
		if entityKeys[label] {
			continue
		}
		field, ok := settingField(label)
		if !ok {
			if e == catalog.Devices && strings.HasSuffix(label, suffixSync) {
				continue
			}
			warnings = append(warnings, fmt.Sprintf("%s: unrecognised key %q", e, label))
			continue
		}
		if _, known := cat.Lookup(field); !known {
			warnings = append(warnings, fmt.Sprintf("%s: %q does not match any %s field", e, label, e))
		}
	}
	return warnings
}

// settingField splits a setting key into its field name.
func settingField(label string) (string, bool) {
	for _, suffix := range []string{suffixInput, suffixDefault, suffixInitial} {
		if name, ok := strings.CutSuffix(label, suffix); ok && name != "" {
			return name, true
		}
	}
	return "", false
}

func decodeMirrorMode(v cue.Value) (mirror.Mode, error) {
	if !v.Exists() {
		return mirror.Off, nil
	}
	switch v.Kind() {
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return mirror.Off, formatCUEError(err, ErrCodeBuildFailed)
		}
		if b {
			return mirror.Standard, nil
		}
		return mirror.Off, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return mirror.Off, formatCUEError(err, ErrCodeBuildFailed)
		}
		if s == "greedy" {
			return mirror.Greedy, nil
		}
	}
	return mirror.Off, &LoadError{
		Code:    ErrCodeBuildFailed,
		Message: `mirrorMode must be true, false or "greedy"`,
		Pos:     v.Pos(),
	}
}

func decodeInclude(v cue.Value) ([]string, error) {
	if !v.Exists() {
		return nil, nil
	}
	if v.Kind() == cue.StringKind {
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err, ErrCodeBuildFailed)
		}
		return []string{s}, nil
	}

	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err, ErrCodeBuildFailed)
	}
	var names []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err, ErrCodeBuildFailed)
		}
		names = append(names, s)
	}
	return names, nil
}

// decodeSlots reads the devices list. Null entries are kept as nil so slot
// positions survive.
func decodeSlots(v cue.Value) ([]*DeviceSlot, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err, ErrCodeBuildFailed)
	}

	var slots []*DeviceSlot
	for idx := 0; iter.Next(); idx++ {
		elem := iter.Value()
		if elem.Kind() == cue.NullKind {
			slots = append(slots, nil)
			continue
		}

		slot := &DeviceSlot{Index: idx, Sync: make(map[string]bool)}
		if slot.Input, err = lookupString(elem, "input"); err != nil {
			return nil, err
		}
		if slot.Input == "" {
			return nil, &LoadError{
				Code:    ErrCodeSlotInput,
				Message: fmt.Sprintf("devices[%d]: input is required", idx),
				Pos:     elem.Pos(),
			}
		}
		if slot.Name, err = lookupString(elem, "name"); err != nil {
			return nil, err
		}
		if slot.DeviceType, err = lookupString(elem, "deviceType"); err != nil {
			return nil, err
		}
		if slot.Fields, err = decodeSettings(elem, catalog.DeviceSlotFields); err != nil {
			return nil, err
		}
		for _, sub := range catalog.DeviceSlotFields {
			if slot.Sync[sub], err = lookupBool(elem, sub+suffixSync); err != nil {
				return nil, err
			}
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func lookup(v cue.Value, path string) (cue.Value, bool) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() || !fv.IsConcrete() {
		return fv, false
	}
	return fv, true
}

func lookupString(v cue.Value, path string) (string, error) {
	fv, ok := lookup(v, path)
	if !ok {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err, ErrCodeBuildFailed)
	}
	return s, nil
}

func lookupBool(v cue.Value, path string) (bool, error) {
	fv, ok := lookup(v, path)
	if !ok {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err, ErrCodeBuildFailed)
	}
	return b, nil
}

// lookupValue decodes any concrete value through its JSON form so number
// literals keep their text.
func lookupValue(v cue.Value, path string) (value.Value, error) {
	fv, ok := lookup(v, path)
	if !ok {
		return nil, nil
	}
	data, err := fv.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err, ErrCodeBuildFailed)
	}
	out, err := value.Decode(data)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("%s: %v", path, err), Pos: fv.Pos()}
	}
	return out, nil
}
