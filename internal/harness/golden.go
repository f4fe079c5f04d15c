package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/xmsync/internal/value"
)

// Snapshot returns the canonical JSON snapshot of a result: the scenario
// name and every planned entity's records and sync options.
func Snapshot(name string, result *Result) ([]byte, error) {
	plans := value.Object{}
	if result.Run != nil {
		plans = result.Run.Value()
	}
	return value.MarshalCanonical(value.Object{
		"scenario_name": value.String(name),
		"plans":         plans,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
