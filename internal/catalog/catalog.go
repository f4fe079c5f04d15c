// Package catalog defines the static field catalogs for every synced entity.
//
// A catalog is the fixed, canonical ordering of an entity's fields. The
// configuration surface (<field>Input, <field>Default, <field>Initial) is
// derived from it at load time, and the order of an entity's sync fields
// always follows it.
package catalog

import "fmt"

// Kind is how a field's raw value is interpreted.
type Kind int

const (
	// Scalar values are passed through unchanged.
	Scalar Kind = iota
	// Boolean values are passed through unchanged; truthiness is left to
	// the consumer, so "true" and true are both kept as supplied.
	Boolean
	// List values are split on "|" when they arrive as strings.
	List
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Boolean:
		return "boolean"
	case List:
		return "list"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FieldSpec describes a single catalog entry.
type FieldSpec struct {
	Name string
	Kind Kind

	// Reserved fields never read configured input, default or initial
	// values. Only internal logic (the mirror policy, group member fan-out)
	// may set them.
	Reserved bool

	// Embed is the related resource requested from the remote API when the
	// field is active. Empty for non-relational fields.
	Embed string
}

// Relational reports whether the field triggers an embed request.
func (f FieldSpec) Relational() bool {
	return f.Embed != ""
}

// Field name constants shared across entities.
const (
	FieldID            = "id"
	FieldExternalKey   = "externalKey"
	FieldRecipientType = "recipientType"
	FieldTargetName    = "targetName"
	FieldName          = "name"
	FieldOwner         = "owner"
	FieldGroup         = "group"
	FieldMembers       = "members"
	FieldInitial       = "initial"
	FieldInSource      = "inSource"
)

func scalar(name string) FieldSpec  { return FieldSpec{Name: name, Kind: Scalar} }
func boolean(name string) FieldSpec { return FieldSpec{Name: name, Kind: Boolean} }
func list(name, embed string) FieldSpec {
	return FieldSpec{Name: name, Kind: List, Embed: embed}
}
func reserved(name string) FieldSpec {
	return FieldSpec{Name: name, Kind: Scalar, Reserved: true}
}

// Catalog is an entity's ordered field list.
type Catalog []FieldSpec

// Lookup returns the spec for name.
func (c Catalog) Lookup(name string) (FieldSpec, bool) {
	for _, f := range c {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Names returns the field names in canonical order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, f := range c {
		names[i] = f.Name
	}
	return names
}

// Index returns the canonical position of name, or -1.
func (c Catalog) Index(name string) int {
	for i, f := range c {
		if f.Name == name {
			return i
		}
	}
	return -1
}
