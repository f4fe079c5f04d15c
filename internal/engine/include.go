package engine

import (
	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/input"
	"github.com/roach88/xmsync/internal/value"
)

// mergeInclude copies each include column present in row onto rec under its
// exact column name. Values already set by field resolution or the mirror
// policy are kept, and nothing is added to the field list.
func mergeInclude(rec value.Object, row input.Row, include []string) {
	for _, name := range include {
		raw, ok := row.Get(name)
		if !ok {
			continue
		}
		if name == catalog.FieldInitial || name == catalog.FieldExternalKey {
			continue
		}
		if _, set := rec[name]; set {
			continue
		}
		rec[name] = raw
	}
}
