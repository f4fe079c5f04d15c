// Package mirror implements mirror mode: tagging records with an external
// key and reconciling destination records against the source set.
//
// In standard mode records are only tagged. In greedy mode the merge
// transform also stamps inSource on every destination record that matches a
// source record, so a later prune pass can treat anything left unstamped as
// an orphan.
package mirror

import (
	"fmt"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/value"
)

// DefaultTag prefixes external keys when no tag is configured.
const DefaultTag = "XMSYNC_"

// Mode selects the mirror behaviour for an entity.
type Mode int

const (
	Off Mode = iota
	Standard
	Greedy
)

func (m Mode) String() string {
	switch m {
	case Off:
		return "off"
	case Standard:
		return "standard"
	case Greedy:
		return "greedy"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Collections holds destination-side records keyed by collection name
// (people, groups, devices, sites).
type Collections map[string][]value.Object

// Transform is called by the sync executor for each source record during
// reconciliation. paired is the destination record currently being compared;
// neither mode inspects it. data holds every destination collection.
type Transform func(src, paired value.Object, data Collections) value.Object

// Policy is the mirror configuration resolved for one entity run.
type Policy struct {
	Mode       Mode
	Tag        string
	KeyField   string
	Collection string
}

// New builds a policy for entity. An empty tag falls back to DefaultTag.
// Entities without a primary key never mirror.
func New(entity catalog.Entity, mode Mode, tag string) Policy {
	if tag == "" {
		tag = DefaultTag
	}
	p := Policy{
		Mode:       mode,
		Tag:        tag,
		KeyField:   entity.PrimaryKey(),
		Collection: string(entity),
	}
	if p.KeyField == "" {
		p.Mode = Off
	}
	return p
}

// Enabled reports whether records are tagged with external keys.
func (p Policy) Enabled() bool {
	return p.Mode != Off
}

// ExternalKey returns tag + primary key. ok is false when the record has
// no usable primary key.
func (p Policy) ExternalKey(rec value.Object) (key string, ok bool) {
	if !p.Enabled() {
		return "", false
	}
	v, exists := rec[p.KeyField]
	if !exists || value.IsEmpty(v) {
		return "", false
	}
	text, ok := value.Text(v)
	if !ok {
		return "", false
	}
	return p.Tag + text, true
}

// Apply stamps the external key on rec. It reports whether a key was set.
func (p Policy) Apply(rec value.Object) bool {
	key, ok := p.ExternalKey(rec)
	if !ok {
		return false
	}
	rec[catalog.FieldExternalKey] = value.String(key)
	return true
}

// Transform returns the merge transform for the policy, or nil when mirror
// mode is off.
func (p Policy) Transform() Transform {
	switch p.Mode {
	case Standard:
		return standardTransform
	case Greedy:
		return p.greedyTransform
	default:
		return nil
	}
}

func standardTransform(src, _ value.Object, _ Collections) value.Object {
	return src
}

// greedyTransform marks the first destination record sharing src's primary
// key as inSource, in place, and returns a copy of src carrying the same mark.
func (p Policy) greedyTransform(src, _ value.Object, data Collections) value.Object {
	key, hasKey := src[p.KeyField]
	if hasKey {
		for _, dest := range data[p.Collection] {
			if destKey, ok := dest[p.KeyField]; ok && value.Equal(destKey, key) {
				dest[catalog.FieldInSource] = value.Bool(true)
				break
			}
		}
	}

	out := src.Clone()
	out[catalog.FieldInSource] = value.Bool(true)
	return out
}
