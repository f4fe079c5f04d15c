package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/engine"
	"github.com/roach88/xmsync/internal/testutil"
	"github.com/roach88/xmsync/internal/value"
)

// createTestStore opens a store in a temp dir with a deterministic clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithClock(testutil.NewDeterministicClock()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun builds a run with a groups plan and a people plan.
func createTestRun(id string) *engine.Run {
	return &engine.Run{
		ID:         id,
		ConfigHash: "config-hash",
		Plans: []*engine.Plan{
			{
				Entity: catalog.Groups,
				Path:   "/data/groups.csv",
				Records: []value.Object{
					{"targetName": value.String("Ops"), "initial": value.Object{}},
					{"targetName": value.String("Dev"), "initial": value.Object{"status": value.String("ACTIVE")}},
				},
				Options: engine.SyncOptions{
					Entity: catalog.Groups,
					Sync:   true,
					Fields: []string{"targetName"},
				},
			},
			{
				Entity:  catalog.People,
				Path:    "/data/people.csv",
				Records: []value.Object{},
				Options: engine.SyncOptions{
					Entity: catalog.People,
					Fields: []string{"supervisors"},
					Embed:  []string{"supervisors"},
				},
			},
		},
	}
}
