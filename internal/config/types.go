package config

import (
	"path/filepath"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/mirror"
	"github.com/roach88/xmsync/internal/value"
)

// FieldSetting holds the three optional settings for one catalog field.
type FieldSetting struct {
	// Input names the source column. Empty when unset.
	Input string

	// Default is used when the input cell is empty or missing. Nil when unset.
	Default value.Value

	// Initial is only sent when the remote record is first created. Nil when unset.
	Initial value.Value
}

// HasInput reports whether a source column is configured.
func (s FieldSetting) HasInput() bool { return s.Input != "" }

// HasDefault reports whether a default is configured.
func (s FieldSetting) HasDefault() bool { return s.Default != nil }

// HasInitial reports whether an initial value is configured.
func (s FieldSetting) HasInitial() bool { return s.Initial != nil }

// DeviceSlot describes one configured device column.
type DeviceSlot struct {
	// Index is the slot's position in the configured devices list,
	// counting skipped null entries.
	Index int

	Input      string
	Name       string
	DeviceType string

	// Fields holds settings for the slot sub-fields (delay, externallyOwned,
	// sequence, priorityThreshold).
	Fields map[string]FieldSetting

	// Sync holds the slot-level <sub>Sync flags.
	Sync map[string]bool
}

// Label is the device name: the configured name, or the input column.
func (d *DeviceSlot) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Input
}

// Type is the configured device type, defaulting to EMAIL.
func (d *DeviceSlot) Type() string {
	if d.DeviceType != "" {
		return d.DeviceType
	}
	return catalog.DefaultDeviceType
}

// IsEmail reports whether the slot produces email devices.
func (d *DeviceSlot) IsEmail() bool {
	return d.Type() == catalog.DefaultDeviceType
}

// EntityConfig is the configuration for one entity.
type EntityConfig struct {
	Entity     catalog.Entity
	Sync       bool
	InputPath  string
	MirrorMode mirror.Mode

	// MirrorTag overrides the process-wide tag for this entity. Empty when unset.
	MirrorTag string

	// Include lists source columns copied verbatim onto each record.
	Include []string

	// Fields holds settings keyed by catalog field name. Reserved fields
	// are loaded too; the resolver ignores them.
	Fields map[string]FieldSetting

	// Devices is the ordered devices list. Nil entries mark skipped slots.
	Devices []*DeviceSlot

	// SubfieldSync holds entity-level <sub>Sync flags for device sub-fields.
	SubfieldSync map[string]bool
}

// Setting returns the settings for a field (zero value when unconfigured).
func (c *EntityConfig) Setting(name string) FieldSetting {
	return c.Fields[name]
}

// Planned reports whether the entity takes part in a run. Sync is passed
// through to the sync options and does not gate processing.
func (c *EntityConfig) Planned() bool {
	return c.InputPath != ""
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string
	Format string
}

// Config is the root configuration for a run.
type Config struct {
	// Path is the file the configuration was loaded from.
	Path string

	// BaseDir anchors relative input paths. Defaults to the config file's directory.
	BaseDir string

	// MirrorTag is the process-wide external key prefix.
	MirrorTag string

	Logging LoggingConfig

	Entities map[catalog.Entity]*EntityConfig

	// Warnings collects non-fatal findings such as settings for unknown fields.
	Warnings []string

	// Hash is the content hash of the raw configuration bytes.
	Hash string
}

// Entity returns the configuration for e, if present.
func (c *Config) Entity(e catalog.Entity) (*EntityConfig, bool) {
	ec, ok := c.Entities[e]
	return ec, ok
}

// MirrorPolicy returns the mirror policy for an entity, threading the
// process-wide tag when the entity sets none.
func (c *Config) MirrorPolicy(ec *EntityConfig) mirror.Policy {
	tag := ec.MirrorTag
	if tag == "" {
		tag = c.MirrorTag
	}
	return mirror.New(ec.Entity, ec.MirrorMode, tag)
}

// ResolvePath makes p absolute relative to BaseDir.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}
