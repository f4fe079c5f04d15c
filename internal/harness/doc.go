// Package harness runs planning scenarios as executable contract tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	config_format: cue            # cue (default), json or yaml
//	config: |
//	  groups: { inputPath: "groups.csv", targetNameInput: "Group" }
//	files:
//	  groups.csv: |
//	    Group
//	    Test1
//	assertions:
//	  - type: fields
//	    entity: groups
//	    fields: [targetName]
//	  - type: record
//	    entity: groups
//	    index: 0
//	    expect: { targetName: Test1, initial: {} }
//
// Input paths in the config resolve against the files map.
//
// # Assertion Types
//
//   - fields: the entity's sync fields equal the list, in order
//   - embed: the entity's embed query equals the string ("" for none)
//   - record: the record at index contains expect (subset match) and lacks
//     every key in absent
//   - record_count: the entity produced exactly count records
//   - journal_count: the journal holds exactly count records for the entity
//
// # Deterministic Testing
//
// Every scenario runs with a fixed run id, a deterministic clock and a
// fresh in-memory journal, so repeated runs produce identical output for
// golden file comparison.
package harness
