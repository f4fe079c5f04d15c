package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/xmsync/internal/catalog"
)

// Scenario defines a planning scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is the configuration source.
	Config string `yaml:"config"`

	// ConfigFormat is cue, json or yaml. Defaults to cue.
	ConfigFormat string `yaml:"config_format,omitempty"`

	// Files maps input paths to their content.
	Files map[string]string `yaml:"files"`

	// Entities limits planning to the named entities. Empty plans all.
	Entities []string `yaml:"entities,omitempty"`

	// RunID is an optional fixed run id. Defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Assertions validate the planned run.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of a planned entity.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Entity is the entity the assertion targets.
	Entity string `yaml:"entity"`

	// Fields is the expected sync field list (used by fields).
	Fields []string `yaml:"fields,omitempty"`

	// Embed is the expected embed query (used by embed).
	Embed string `yaml:"embed,omitempty"`

	// Index selects the record (used by record).
	Index int `yaml:"index,omitempty"`

	// Expect contains expected record values (used by record).
	// Subset match - only specified keys are validated.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Absent lists keys the record must not have (used by record).
	Absent []string `yaml:"absent,omitempty"`

	// Count is the expected number of records (used by record_count and
	// journal_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFields       = "fields"
	AssertEmbed        = "embed"
	AssertRecord       = "record"
	AssertRecordCount  = "record_count"
	AssertJournalCount = "journal_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files directly inside dir,
// sorted by name.
func FindScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Config == "" {
		return fmt.Errorf("config is required")
	}

	switch s.ConfigFormat {
	case "", "cue", "json", "yaml":
	default:
		return fmt.Errorf("unknown config_format %q", s.ConfigFormat)
	}

	for i, name := range s.Entities {
		if _, err := catalog.Parse(name); err != nil {
			return fmt.Errorf("entities[%d]: %w", i, err)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if _, err := catalog.Parse(a.Entity); err != nil {
		return fmt.Errorf("assertions[%d]: %w", index, err)
	}

	switch a.Type {
	case AssertFields, AssertEmbed:
	case AssertRecord:
		if a.Index < 0 {
			return fmt.Errorf("assertions[%d]: index must be non-negative for record", index)
		}
		if len(a.Expect) == 0 && len(a.Absent) == 0 {
			return fmt.Errorf("assertions[%d]: expect or absent is required for record", index)
		}
	case AssertRecordCount, AssertJournalCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
