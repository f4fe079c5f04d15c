package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/value"
)

func TestScenarios_Golden(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion errors: %v", result.Errors)
		})
	}
}

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Minimal test scenario",
		Config:      `sites: { inputPath: "sites.csv", nameInput: "Site" }`,
		Files:       map[string]string{"sites.csv": "Site\nLondon\n"},
		Assertions: []Assertion{
			{Type: AssertFields, Entity: "sites", Fields: []string{"name"}},
			{Type: AssertRecordCount, Entity: "sites", Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)

	plan, ok := result.Run.Plan(catalog.Sites)
	require.True(t, ok)
	assert.Equal(t, value.String("London"), plan.Records[0]["name"])
	assert.Equal(t, "test-run-default", result.Run.ID)
}

func TestRun_FixedRunID(t *testing.T) {
	scenario := &Scenario{
		Name:        "run_id",
		Description: "Fixed run id",
		Config:      `sites: { inputPath: "sites.csv", nameInput: "Site" }`,
		Files:       map[string]string{"sites.csv": "Site\nLondon\n"},
		RunID:       "run-42",
		Assertions: []Assertion{
			{Type: AssertJournalCount, Entity: "sites", Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "assertion errors: %v", result.Errors)
	assert.Equal(t, "run-42", result.Run.ID)
}

func TestRun_EntityFilter(t *testing.T) {
	scenario := &Scenario{
		Name:        "filtered",
		Description: "Only groups are planned",
		Config: `
sites:  { inputPath: "sites.csv", nameInput: "Site" }
groups: { inputPath: "groups.csv", targetNameInput: "Group" }
`,
		Files: map[string]string{
			"sites.csv":  "Site\nLondon\n",
			"groups.csv": "Group\nOps\n",
		},
		Entities: []string{"groups"},
		Assertions: []Assertion{
			{Type: AssertRecordCount, Entity: "groups", Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass)

	_, ok := result.Run.Plan(catalog.Sites)
	assert.False(t, ok)
}

func TestRun_FailingAssertion(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "Expected field list does not match",
		Config:      `groups: { inputPath: "groups.csv", targetNameInput: "Group" }`,
		Files:       map[string]string{"groups.csv": "Group\nOps\n"},
		Assertions: []Assertion{
			{Type: AssertFields, Entity: "groups", Fields: []string{"targetName", "description"}},
			{Type: AssertRecordCount, Entity: "people", Count: 0},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Assertion failed: fields (groups)")
	assert.Contains(t, result.Errors[1], `entity "people" was not planned`)
}

func TestRun_ConfigWarnings(t *testing.T) {
	scenario := &Scenario{
		Name:        "warnings",
		Description: "Unknown settings surface as warnings",
		Config:      `groups: { inputPath: "groups.csv", targetNameInput: "Group", colourInput: "Colour" }`,
		Files:       map[string]string{"groups.csv": "Group\nOps\n"},
		Assertions: []Assertion{
			{Type: AssertRecordCount, Entity: "groups", Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "colourInput")
}

func TestRun_InvalidConfig(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_config",
		Description: "Config that does not compile",
		Config:      `groups: {`,
		Assertions: []Assertion{
			{Type: AssertRecordCount, Entity: "groups", Count: 0},
		},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRun_MissingInputFile(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing_file",
		Description: "Input file is not in the files map",
		Config:      `groups: { inputPath: "groups.csv", targetNameInput: "Group" }`,
		Assertions: []Assertion{
			{Type: AssertRecordCount, Entity: "groups", Count: 0},
		},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to plan")
}

func TestSnapshot_Canonical(t *testing.T) {
	scenario := &Scenario{
		Name:        "snapshot",
		Description: "Snapshot shape",
		Config:      `groups: { inputPath: "groups.csv", targetNameInput: "Group" }`,
		Files:       map[string]string{"groups.csv": "Group\nOps\n"},
		Assertions: []Assertion{
			{Type: AssertRecordCount, Entity: "groups", Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	data, err := Snapshot("snapshot", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"plans":{"groups":{"records":[{"initial":{},"targetName":"Ops"}],"syncOptions":{"groups":false,"groupsOptions":{"fields":["targetName"]}}}},"scenario_name":"snapshot"}`,
		string(data))
}

func TestSnapshot_NoRun(t *testing.T) {
	data, err := Snapshot("empty", NewResult())
	require.NoError(t, err)
	assert.Equal(t, `{"plans":{},"scenario_name":"empty"}`, string(data))
}
