package resolve

import (
	"fmt"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/config"
	"github.com/roach88/xmsync/internal/input"
	"github.com/roach88/xmsync/internal/value"
)

// Precedence records where a resolved value came from.
type Precedence int

const (
	// None means the field produced no value for the row.
	None Precedence = iota
	// FromInput means the value was read from the source column.
	FromInput
	// FromDefault means the configured default was used.
	FromDefault
)

func (p Precedence) String() string {
	switch p {
	case None:
		return "none"
	case FromInput:
		return "input"
	case FromDefault:
		return "default"
	default:
		return fmt.Sprintf("Precedence(%d)", int(p))
	}
}

// Result is the outcome of resolving one field for one row.
type Result struct {
	// Value is nil when the field contributes nothing to the record.
	Value value.Value

	// Initial is the parsed Initial setting, nil when unset.
	Initial value.Value

	Precedence Precedence
}

// Field is a catalog entry bound to its settings and the run's column set.
type Field struct {
	Spec    catalog.FieldSpec
	Setting config.FieldSetting

	// Active fields appear in the run's sync field list.
	Active bool

	hasColumn bool
}

// NewField binds spec to setting for a run over cols. Reserved fields are
// never active and ignore every setting.
func NewField(spec catalog.FieldSpec, setting config.FieldSetting, cols input.Columns) Field {
	if spec.Reserved {
		return Field{Spec: spec}
	}
	f := Field{
		Spec:      spec,
		Setting:   setting,
		hasColumn: setting.HasInput() && cols.Has(setting.Input),
	}
	f.Active = setting.HasDefault() || f.hasColumn
	return f
}

// Activate reports whether spec is active for a run over cols.
func Activate(spec catalog.FieldSpec, setting config.FieldSetting, cols input.Columns) bool {
	return NewField(spec, setting, cols).Active
}

// Resolve resolves the field for row. A non-empty input cell wins over the
// default; an empty or missing cell falls back to it. Initial is taken from
// configuration alone.
func (f Field) Resolve(row input.Row) Result {
	if f.Spec.Reserved {
		return Result{}
	}

	var res Result
	if f.Setting.HasInitial() {
		res.Initial = Parse(f.Setting.Initial, f.Spec.Kind)
	}
	if !f.Active {
		return res
	}

	if f.hasColumn {
		if raw, ok := row.Get(f.Setting.Input); ok && !value.IsEmpty(raw) {
			res.Value = Parse(raw, f.Spec.Kind)
			res.Precedence = FromInput
			return res
		}
	}
	if f.Setting.HasDefault() {
		res.Value = Parse(f.Setting.Default, f.Spec.Kind)
		res.Precedence = FromDefault
	}
	return res
}

// Resolve is a convenience for resolving a single field without binding it first.
func Resolve(spec catalog.FieldSpec, setting config.FieldSetting, row input.Row, cols input.Columns) Result {
	return NewField(spec, setting, cols).Resolve(row)
}
