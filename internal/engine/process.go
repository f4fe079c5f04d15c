package engine

import (
	"log/slog"
	"slices"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/config"
	"github.com/roach88/xmsync/internal/input"
	"github.com/roach88/xmsync/internal/mirror"
	"github.com/roach88/xmsync/internal/resolve"
	"github.com/roach88/xmsync/internal/value"
)

// Plan is the output for one entity: its records and sync options.
type Plan struct {
	Entity  catalog.Entity
	Path    string
	Records []value.Object
	Options SyncOptions
}

// Value returns the plan as a single object, for snapshots and the journal.
func (p *Plan) Value() value.Object {
	records := make(value.List, len(p.Records))
	for i, rec := range p.Records {
		records[i] = rec
	}
	return value.Object{
		"records":     records,
		"syncOptions": p.Options.Value(),
	}
}

// Process plans one entity from its table. It never fails: missing columns,
// empty cells and absent settings all mean "no value".
func Process(ec *config.EntityConfig, policy mirror.Policy, tbl *input.Table, logger *slog.Logger) *Plan {
	if logger == nil {
		logger = slog.Default()
	}
	p := &processor{
		ec:     ec,
		policy: policy,
		cols:   tbl.Columns,
		logger: logger.With("entity", string(ec.Entity)),
		fields: newFieldList(),
	}

	var records []value.Object
	switch ec.Entity {
	case catalog.Devices:
		records = p.devices(tbl.Rows)
	case catalog.GroupMembers:
		records = p.groupMembers(tbl.Rows)
	default:
		records = p.standard(tbl.Rows)
	}
	if records == nil {
		records = []value.Object{}
	}

	return &Plan{
		Entity:  ec.Entity,
		Path:    tbl.Path,
		Records: records,
		Options: p.fields.options(ec.Entity, ec.Sync, policy),
	}
}

// processor carries the run-scoped state for one entity.
type processor struct {
	ec     *config.EntityConfig
	policy mirror.Policy
	cols   input.Columns
	logger *slog.Logger
	fields *fieldList
}

// bind binds the named catalog fields and records the active ones in the
// run's field list. Reserved fields are skipped.
func (p *processor) bind(names ...string) []resolve.Field {
	cat := p.ec.Entity.Catalog()
	var bound []resolve.Field
	for _, spec := range cat {
		if spec.Reserved || !slices.Contains(names, spec.Name) {
			continue
		}
		f := resolve.NewField(spec, p.ec.Setting(spec.Name), p.cols)
		if f.Active {
			p.fields.add(spec)
		}
		bound = append(bound, f)
	}
	return bound
}

// bindAll binds every catalog field.
func (p *processor) bindAll() []resolve.Field {
	return p.bind(p.ec.Entity.Catalog().Names()...)
}

// standard handles groups, people and sites: one record per row.
func (p *processor) standard(rows []input.Row) []value.Object {
	bound := p.bindAll()

	records := make([]value.Object, 0, len(rows))
	for i, row := range rows {
		rec := newRecord()
		for _, f := range bound {
			apply(rec, f.Spec.Name, f.Resolve(row))
		}
		p.finish(rec, row, i)
		records = append(records, rec)
	}
	return records
}

// finish applies the mirror policy and include columns, and reports a
// missing primary key.
func (p *processor) finish(rec value.Object, row input.Row, idx int) {
	if key := p.ec.Entity.PrimaryKey(); key != "" && value.IsEmpty(rec[key]) {
		p.logger.Warn("record has no primary key", "row", idx+1, "field", key)
	}
	p.policy.Apply(rec)
	mergeInclude(rec, row, p.ec.Include)
}

// newRecord returns an empty record with its initial object.
func newRecord() value.Object {
	return value.Object{catalog.FieldInitial: value.Object{}}
}

// apply copies a resolution result onto rec.
func apply(rec value.Object, name string, res resolve.Result) {
	if res.Value != nil {
		rec[name] = res.Value
	}
	if res.Initial != nil {
		initial(rec)[name] = res.Initial
	}
}

func initial(rec value.Object) value.Object {
	obj, ok := rec[catalog.FieldInitial].(value.Object)
	if !ok {
		obj = value.Object{}
		rec[catalog.FieldInitial] = obj
	}
	return obj
}
