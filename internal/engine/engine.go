package engine

import (
	"context"
	"log/slog"
	"slices"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/config"
	"github.com/roach88/xmsync/internal/input"
	"github.com/roach88/xmsync/internal/value"
)

// Engine plans sync runs for a loaded configuration.
//
// INVARIANTS:
//   - Entities are planned in catalog.All order
//   - Rows are processed in source order
//   - Activation depends on configuration and headers only
type Engine struct {
	cfg    *config.Config
	reader input.Reader
	runIDs RunIDGenerator
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRunIDGenerator sets the run id generator. Default: UUIDv7Generator.
// Use NewFixedGenerator in tests for stable ids.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) {
		e.runIDs = g
	}
}

// New creates an Engine reading source files through reader.
func New(cfg *config.Config, reader input.Reader, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		reader: reader,
		runIDs: UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run is the result of one planning run.
type Run struct {
	ID         string
	ConfigHash string
	Plans      []*Plan
}

// Plan returns the plan for entity, if it was planned.
func (r *Run) Plan(entity catalog.Entity) (*Plan, bool) {
	for _, p := range r.Plans {
		if p.Entity == entity {
			return p, true
		}
	}
	return nil, false
}

// Value returns the plans keyed by entity. The run id is left out so the
// output of identical inputs is identical.
func (r *Run) Value() value.Object {
	out := make(value.Object, len(r.Plans))
	for _, p := range r.Plans {
		out[string(p.Entity)] = p.Value()
	}
	return out
}

// Plan reads every configured entity's input and plans it. When only is
// non-empty, other entities are skipped. Cancellation is checked between
// entities.
func (e *Engine) Plan(ctx context.Context, only ...catalog.Entity) (*Run, error) {
	run := &Run{
		ID:         e.runIDs.Generate(),
		ConfigHash: e.cfg.Hash,
	}
	logger := e.logger.With("run", run.ID)

	for _, entity := range catalog.All {
		if len(only) > 0 && !slices.Contains(only, entity) {
			continue
		}
		ec, ok := e.cfg.Entity(entity)
		if !ok || !ec.Planned() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, &PlanError{Code: ErrCodeCancelled, Entity: entity, Err: err}
		}

		path := e.cfg.ResolvePath(ec.InputPath)
		tbl, err := e.reader.Read(path)
		if err != nil {
			return nil, &PlanError{Code: ErrCodeInputFailed, Entity: entity, Path: path, Err: err}
		}

		plan := Process(ec, e.cfg.MirrorPolicy(ec), tbl, logger)
		logger.Debug("entity planned",
			"entity", string(entity),
			"path", path,
			"rows", len(tbl.Rows),
			"records", len(plan.Records),
			"fields", plan.Options.Fields,
		)
		run.Plans = append(run.Plans, plan)
	}

	logger.Info("run planned", "entities", len(run.Plans))
	return run, nil
}
