package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/value"
)

// ErrRunNotFound is returned when a run id is not in the journal.
var ErrRunNotFound = errors.New("run not found")

// RunSummary describes one journaled run.
type RunSummary struct {
	ID            string
	Seq           int64
	ConfigPath    string
	ConfigHash    string
	EngineVersion string
	PlannedAt     time.Time
	Entities      int
	Records       int
}

// PlanEntry is one entity's journaled sync options.
type PlanEntry struct {
	Entity      catalog.Entity
	InputPath   string
	Sync        bool
	Options     value.Object
	RecordCount int
}

// RecordEntry is one journaled record.
type RecordEntry struct {
	Index int
	Hash  string
	Data  value.Object
}

// ListRuns returns the most recent runs, newest first. limit <= 0 returns all.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `
		SELECT r.id, r.seq, r.config_path, r.config_hash, r.engine_version, r.planned_at,
		       COUNT(p.entity), COALESCE(SUM(p.record_count), 0)
		FROM runs r
		LEFT JOIN plans p ON p.run_id = r.id
		GROUP BY r.id
		ORDER BY r.seq DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var (
			r         RunSummary
			plannedAt string
		)
		if err := rows.Scan(&r.ID, &r.Seq, &r.ConfigPath, &r.ConfigHash, &r.EngineVersion, &plannedAt, &r.Entities, &r.Records); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.PlannedAt, err = parseTime(plannedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadPlans returns the plans of a run in planning order.
// Returns ErrRunNotFound if the run was never journaled.
func (s *Store) ReadPlans(ctx context.Context, runID string) ([]PlanEntry, error) {
	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT entity, input_path, sync, options, record_count
		FROM plans
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	plans := []PlanEntry{}
	for rows.Next() {
		var (
			p           PlanEntry
			entity      string
			sync        int
			optionsJSON string
		)
		if err := rows.Scan(&entity, &p.InputPath, &sync, &optionsJSON, &p.RecordCount); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		p.Entity = catalog.Entity(entity)
		p.Sync = sync != 0
		if p.Options, err = unmarshalObject(optionsJSON); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return plans, nil
}

// ReadRecords returns a run's records for one entity, in emission order.
func (s *Store) ReadRecords(ctx context.Context, runID string, entity catalog.Entity) ([]RecordEntry, error) {
	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, hash, data
		FROM records
		WHERE run_id = ? AND entity = ?
		ORDER BY idx ASC
	`, runID, string(entity))
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []RecordEntry{}
	for rows.Next() {
		var (
			r    RecordEntry
			data string
		)
		if err := rows.Scan(&r.Index, &r.Hash, &data); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if r.Data, err = unmarshalObject(data); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// RunsWithRecord returns the ids of runs that emitted a record with the
// given content hash, oldest first.
func (s *Store) RunsWithRecord(ctx context.Context, hash string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT r.id, r.seq
		FROM records rec
		JOIN runs r ON r.id = rec.run_id
		WHERE rec.hash = ?
		ORDER BY r.seq ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query runs by record: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var (
			id  string
			seq int64
		)
		if err := rows.Scan(&id, &seq); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run ids: %w", err)
	}
	return ids, nil
}

func (s *Store) requireRun(ctx context.Context, runID string) error {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs WHERE id = ?`, runID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	return nil
}
