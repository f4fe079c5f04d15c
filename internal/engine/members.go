package engine

import (
	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/input"
	"github.com/roach88/xmsync/internal/resolve"
	"github.com/roach88/xmsync/internal/value"
)

// groupMembers emits one record per element of the row's members list.
// Each record carries the row's group and the member as its id.
func (p *processor) groupMembers(rows []input.Row) []value.Object {
	cat := p.ec.Entity.Catalog()
	groupSpec, _ := cat.Lookup(catalog.FieldGroup)
	membersSpec, _ := cat.Lookup(catalog.FieldMembers)

	group := resolve.NewField(groupSpec, p.ec.Setting(catalog.FieldGroup), p.cols)
	members := resolve.NewField(membersSpec, p.ec.Setting(catalog.FieldMembers), p.cols)
	if group.Active {
		p.fields.add(groupSpec)
	}
	if members.Active {
		p.fields.addName(catalog.FieldID)
	}

	var records []value.Object
	for i, row := range rows {
		groupRes := group.Resolve(row)
		membersRes := members.Resolve(row)

		list := memberList(membersRes.Value)
		if len(list) > 0 && value.IsEmpty(groupRes.Value) {
			p.logger.Warn("group member row has no group", "row", i+1)
		}

		for _, member := range list {
			if value.IsEmpty(member) {
				continue
			}
			rec := newRecord()
			apply(rec, catalog.FieldGroup, groupRes)
			rec[catalog.FieldID] = member
			if membersRes.Initial != nil {
				initial(rec)[catalog.FieldMembers] = membersRes.Initial
			}
			p.finish(rec, row, i)
			records = append(records, rec)
		}
	}
	return records
}

// memberList normalises a resolved members value into a list. A scalar from
// JSON input counts as a single member.
func memberList(v value.Value) value.List {
	switch val := v.(type) {
	case nil:
		return nil
	case value.List:
		return val
	default:
		return value.List{val}
	}
}
