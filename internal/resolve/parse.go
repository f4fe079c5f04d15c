// Package resolve turns configured field settings and source rows into
// record values.
//
// Activation is decided once per run from configuration and the source
// header, never from row contents, so every record of a run reports the
// same active fields.
package resolve

import (
	"strings"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/value"
)

// ListSeparator splits list values that arrive as strings. It cannot be escaped.
const ListSeparator = "|"

// Parse converts raw into the representation of kind. Strings for list
// fields are split on ListSeparator; lists are kept as they are. Every other
// value, booleans included, passes through unchanged.
func Parse(raw value.Value, kind catalog.Kind) value.Value {
	if kind != catalog.List {
		return raw
	}
	s, ok := raw.(value.String)
	if !ok {
		return raw
	}
	return value.Strings(strings.Split(string(s), ListSeparator)...)
}
