package engine

import (
	"strings"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/mirror"
	"github.com/roach88/xmsync/internal/value"
)

// SyncOptions tells the sync executor how to apply one entity's records.
type SyncOptions struct {
	Entity catalog.Entity

	// Sync is passed through from configuration.
	Sync bool

	// Fields lists the active fields in catalog order. It is the same for
	// every record of the run.
	Fields []string

	// Embed lists related resources to fetch, in catalog order.
	Embed []string

	// Transform is the mirror merge transform, nil when mirror mode is off.
	// It is not serialised.
	Transform mirror.Transform
}

// Value returns the options in their wire form:
//
//	{"<entity>": sync, "<entity>Options": {"fields": [...]}, "<entity>Query": {"embed": "a,b"}}
//
// The query key is omitted when nothing is embedded.
func (o SyncOptions) Value() value.Object {
	name := string(o.Entity)
	out := value.Object{
		name:             value.Bool(o.Sync),
		name + "Options": value.Object{"fields": value.Strings(o.Fields...)},
	}
	if len(o.Embed) > 0 {
		out[name+"Query"] = value.Object{"embed": value.String(strings.Join(o.Embed, ","))}
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (o SyncOptions) MarshalJSON() ([]byte, error) {
	return o.Value().MarshalJSON()
}

// fieldList accumulates the run's active fields and embeds. Each name is
// added at most once; callers add in catalog order.
type fieldList struct {
	fields []string
	embed  []string
	seen   map[string]bool
}

func newFieldList() *fieldList {
	return &fieldList{seen: make(map[string]bool)}
}

func (l *fieldList) add(spec catalog.FieldSpec) {
	if l.seen[spec.Name] {
		return
	}
	l.seen[spec.Name] = true
	l.fields = append(l.fields, spec.Name)
	if spec.Relational() && !l.seen["embed:"+spec.Embed] {
		l.seen["embed:"+spec.Embed] = true
		l.embed = append(l.embed, spec.Embed)
	}
}

// addName adds a field outside the catalog walk, such as externalKey.
func (l *fieldList) addName(name string) {
	l.add(catalog.FieldSpec{Name: name})
}

func (l *fieldList) options(entity catalog.Entity, sync bool, policy mirror.Policy) SyncOptions {
	if policy.Enabled() {
		l.addName(catalog.FieldExternalKey)
	}
	return SyncOptions{
		Entity:    entity,
		Sync:      sync,
		Fields:    append([]string{}, l.fields...),
		Embed:     append([]string{}, l.embed...),
		Transform: policy.Transform(),
	}
}
