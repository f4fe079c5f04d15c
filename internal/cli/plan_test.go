package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xmsync/internal/engine"
	"github.com/roach88/xmsync/internal/store"
)

// planFixture writes a config and its CSV inputs into a temp dir and returns
// the config path.
func planFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"xmsync.cue": `
groups: { inputPath: "groups.csv", targetNameInput: "Group" }
people: { inputPath: "people.csv", sync: true, targetNameInput: "User", statusDefault: "ACTIVE" }
`,
		"groups.csv": "Group\nOps\n",
		"people.csv": "User\nalice\nbob\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return filepath.Join(dir, "xmsync.cue")
}

func executePlan(t *testing.T, opts *PlanOptions, args ...string) (string, string, error) {
	t.Helper()
	if opts.RunIDs == nil {
		opts.RunIDs = engine.NewFixedGenerator("run-1")
	}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := newPlanCommand(opts)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestPlanText(t *testing.T) {
	configPath := planFixture(t)

	out, _, err := executePlan(t, &PlanOptions{RootOptions: &RootOptions{Format: "text"}}, configPath)
	require.NoError(t, err)

	assert.Contains(t, out, "run run-1\n")
	assert.Contains(t, out, "groups (1 records)\n"+
		`{"records":[{"initial":{},"targetName":"Ops"}],"syncOptions":{"groups":false,"groupsOptions":{"fields":["targetName"]}}}`)
	assert.Contains(t, out, "people (2 records)\n")
	assert.Contains(t, out, `"peopleOptions":{"fields":["targetName","status"]}`)
}

func TestPlanJSON(t *testing.T) {
	configPath := planFixture(t)

	out, _, err := executePlan(t, &PlanOptions{RootOptions: &RootOptions{Format: "json"}}, configPath)
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			RunID string `json:"run_id"`
			Plans map[string]struct {
				Records     []map[string]any `json:"records"`
				SyncOptions map[string]any   `json:"syncOptions"`
			} `json:"plans"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.Data.RunID)
	require.Contains(t, resp.Data.Plans, "people")
	people := resp.Data.Plans["people"]
	require.Len(t, people.Records, 2)
	assert.Equal(t, "bob", people.Records[1]["targetName"])
	assert.Equal(t, "ACTIVE", people.Records[1]["status"])
	assert.Equal(t, true, people.SyncOptions["people"])
}

func TestPlanEntityFilter(t *testing.T) {
	configPath := planFixture(t)

	out, _, err := executePlan(t, &PlanOptions{RootOptions: &RootOptions{Format: "text"}}, "--entity", "people", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "people (2 records)")
	assert.NotContains(t, out, "groups (")
}

func TestPlanInvalidEntity(t *testing.T) {
	configPath := planFixture(t)

	_, _, err := executePlan(t, &PlanOptions{RootOptions: &RootOptions{Format: "text"}}, "--entity", "teams", configPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid --entity")
}

func TestPlanMissingConfig(t *testing.T) {
	out, _, err := executePlan(t, &PlanOptions{RootOptions: &RootOptions{Format: "text"}}, "/nonexistent/xmsync.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load config")
	assert.Contains(t, out, "Error [E005]")
}

func TestPlanMissingInput(t *testing.T) {
	configPath := planFixture(t)
	require.NoError(t, os.Remove(filepath.Join(filepath.Dir(configPath), "people.csv")))

	out, _, err := executePlan(t, &PlanOptions{RootOptions: &RootOptions{Format: "text"}}, configPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to plan")
	assert.Contains(t, out, "Error ["+ErrCodeInput+"]")
	assert.True(t, engine.IsInputError(err))
}

func TestPlanVerboseLogs(t *testing.T) {
	configPath := planFixture(t)

	_, errOut, err := executePlan(t, &PlanOptions{RootOptions: &RootOptions{Format: "text", Verbose: true}}, configPath)
	require.NoError(t, err)
	assert.Contains(t, errOut, "entity planned")
	assert.Contains(t, errOut, "run=run-1")
}

func TestPlanJournal(t *testing.T) {
	configPath := planFixture(t)
	dbPath := filepath.Join(t.TempDir(), "journal.db")

	_, errOut, err := executePlan(t, &PlanOptions{RootOptions: &RootOptions{Format: "text"}}, "--db", dbPath, configPath)
	require.NoError(t, err)
	assert.Contains(t, errOut, "run journaled")

	_, _, err = executePlan(t, &PlanOptions{
		RootOptions: &RootOptions{Format: "text"},
		RunIDs:      engine.NewFixedGenerator("run-2"),
	}, "--db", dbPath, configPath)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, configPath, runs[1].ConfigPath)
	assert.Equal(t, 2, runs[1].Entities)
	assert.Equal(t, 3, runs[1].Records)
}
