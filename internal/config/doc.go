// Package config loads and validates xmsync run configuration.
//
// A configuration file may be CUE, JSON or YAML. Whatever the format, the
// content is turned into a CUE value, unified with the embedded #Config
// schema and then decoded into typed EntityConfig values.
//
// Per-field settings follow a flat naming convention inside each entity
// object:
//
//	groups: {
//		sync:               true
//		inputPath:          "groups.csv"
//		targetNameInput:    "Group"
//		statusDefault:      "ACTIVE"
//		supervisorsInitial: ["admin"]
//	}
//
// The decoder does not concatenate names at runtime; it walks the static
// field catalog and looks up <field>Input, <field>Default and
// <field>Initial for each entry.
//
// Loading order:
//  1. File content (CUE, JSON or YAML)
//  2. Schema unification and concreteness check
//  3. Environment overrides (XMSYNC_MIRROR_TAG, XMSYNC_BASE_DIR,
//     XMSYNC_LOG_LEVEL, XMSYNC_LOG_FORMAT)
package config
