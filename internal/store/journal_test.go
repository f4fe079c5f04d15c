package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/testutil"
	"github.com/roach88/xmsync/internal/value"
)

func TestWriteRun_ListRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, "/cfg/a.cue", createTestRun("run-1")))
	require.NoError(t, s.WriteRun(ctx, "/cfg/b.cue", createTestRun("run-2")))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, int64(2), runs[0].Seq)
	assert.Equal(t, "/cfg/b.cue", runs[0].ConfigPath)
	assert.True(t, testutil.Epoch.Add(1e9).Equal(runs[0].PlannedAt), "planned_at %v", runs[0].PlannedAt)

	assert.Equal(t, "run-1", runs[1].ID)
	assert.Equal(t, "config-hash", runs[1].ConfigHash)
	assert.Equal(t, value.EngineVersion, runs[1].EngineVersion)
	assert.True(t, testutil.Epoch.Equal(runs[1].PlannedAt), "planned_at %v", runs[1].PlannedAt)
	assert.Equal(t, 2, runs[1].Entities)
	assert.Equal(t, 2, runs[1].Records)

	limited, err := s.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "run-2", limited[0].ID)
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, "/cfg/a.cue", createTestRun("run-1")))
	require.NoError(t, s.WriteRun(ctx, "/cfg/a.cue", createTestRun("run-1")))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	records, err := s.ReadRecords(ctx, "run-1", catalog.Groups)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestReadPlans(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, "/cfg/a.cue", createTestRun("run-1")))

	plans, err := s.ReadPlans(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, plans, 2)

	assert.Equal(t, catalog.Groups, plans[0].Entity)
	assert.Equal(t, "/data/groups.csv", plans[0].InputPath)
	assert.True(t, plans[0].Sync)
	assert.Equal(t, 2, plans[0].RecordCount)
	assert.Equal(t, value.Object{
		"groups":        value.Bool(true),
		"groupsOptions": value.Object{"fields": value.Strings("targetName")},
	}, plans[0].Options)

	assert.Equal(t, catalog.People, plans[1].Entity)
	assert.False(t, plans[1].Sync)
	assert.Equal(t, value.Object{"embed": value.String("supervisors")}, plans[1].Options["peopleQuery"])
}

func TestReadRecords(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := createTestRun("run-1")
	require.NoError(t, s.WriteRun(ctx, "/cfg/a.cue", run))

	records, err := s.ReadRecords(ctx, "run-1", catalog.Groups)
	require.NoError(t, err)
	require.Len(t, records, 2)

	for i, rec := range records {
		assert.Equal(t, i, rec.Index)
		assert.Equal(t, run.Plans[0].Records[i], rec.Data)
		assert.Equal(t, value.MustRecordHash(run.Plans[0].Records[i]), rec.Hash)
	}

	empty, err := s.ReadRecords(ctx, "run-1", catalog.People)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestReadUnknownRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.ReadPlans(ctx, "missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))

	_, err = s.ReadRecords(ctx, "missing", catalog.Groups)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestRunsWithRecord(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, "/cfg/a.cue", createTestRun("run-1")))

	changed := createTestRun("run-2")
	changed.Plans[0].Records[0] = value.Object{"targetName": value.String("Ops2"), "initial": value.Object{}}
	require.NoError(t, s.WriteRun(ctx, "/cfg/a.cue", changed))

	unchanged := value.MustRecordHash(changed.Plans[0].Records[1])
	ids, err := s.RunsWithRecord(ctx, unchanged)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1", "run-2"}, ids)

	original := value.MustRecordHash(value.Object{"targetName": value.String("Ops"), "initial": value.Object{}})
	ids, err = s.RunsWithRecord(ctx, original)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1"}, ids)

	ids, err = s.RunsWithRecord(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}
