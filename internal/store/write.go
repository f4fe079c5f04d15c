package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/xmsync/internal/engine"
	"github.com/roach88/xmsync/internal/value"
)

// WriteRun journals a planning run with every plan and record, in one
// transaction. Writing the same run id twice is a no-op.
//
// Options and records are stored as RFC 8785 canonical JSON; each record
// row also carries value.RecordHash of its content.
func (s *Store) WriteRun(ctx context.Context, configPath string, run *engine.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return fmt.Errorf("write run: next seq: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, config_path, config_hash, engine_version, schema_version, planned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		seq,
		configPath,
		run.ConfigHash,
		value.EngineVersion,
		value.SchemaVersion,
		formatTime(s.clock.Now()),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("write run: %w", err)
	} else if n == 0 {
		return nil
	}

	for pos, plan := range run.Plans {
		if err := writePlan(ctx, tx, run.ID, pos, plan); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

func writePlan(ctx context.Context, tx *sql.Tx, runID string, pos int, plan *engine.Plan) error {
	optionsJSON, err := marshalObject(plan.Options.Value())
	if err != nil {
		return fmt.Errorf("write plan %s: %w", plan.Entity, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO plans
		(run_id, entity, position, input_path, sync, options, record_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		runID,
		string(plan.Entity),
		pos,
		plan.Path,
		boolToInt(plan.Options.Sync),
		optionsJSON,
		len(plan.Records),
	)
	if err != nil {
		return fmt.Errorf("write plan %s: %w", plan.Entity, err)
	}

	for idx, rec := range plan.Records {
		data, err := marshalObject(rec)
		if err != nil {
			return fmt.Errorf("write record %s[%d]: %w", plan.Entity, idx, err)
		}
		hash, err := value.RecordHash(rec)
		if err != nil {
			return fmt.Errorf("write record %s[%d]: %w", plan.Entity, idx, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO records (run_id, entity, idx, hash, data)
			VALUES (?, ?, ?, ?, ?)
		`, runID, string(plan.Entity), idx, hash, data)
		if err != nil {
			return fmt.Errorf("write record %s[%d]: %w", plan.Entity, idx, err)
		}
	}
	return nil
}
