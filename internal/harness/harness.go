package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/config"
	"github.com/roach88/xmsync/internal/engine"
	"github.com/roach88/xmsync/internal/store"
	"github.com/roach88/xmsync/internal/testutil"
)

// ScenarioDir is the base directory scenario files are served from.
const ScenarioDir = "/scenario"

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory journal. Execution flow:
//  1. Parse the scenario config and point its base directory at the files map
//  2. Plan the run with a fixed run id
//  3. Journal the run
//  4. Evaluate assertions against the run and the journal
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:", store.WithClock(testutil.NewDeterministicClock()))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	format := scenario.ConfigFormat
	if format == "" {
		format = "cue"
	}
	cfg, err := config.Parse("xmsync."+format, []byte(scenario.Config))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.BaseDir = ScenarioDir

	reader := testutil.MapReader{}
	for name, content := range scenario.Files {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(ScenarioDir, name)
		}
		reader[path] = content
	}

	var only []catalog.Entity
	for _, name := range scenario.Entities {
		e, err := catalog.Parse(name)
		if err != nil {
			return nil, err
		}
		only = append(only, e)
	}

	eng := engine.New(cfg, reader,
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(scenario.RunID)),
	)

	ctx := context.Background()
	run, err := eng.Plan(ctx, only...)
	if err != nil {
		return nil, fmt.Errorf("failed to plan: %w", err)
	}
	if err := st.WriteRun(ctx, "scenario:"+scenario.Name, run); err != nil {
		return nil, fmt.Errorf("failed to journal run: %w", err)
	}

	result := NewResult()
	result.Run = run
	result.Warnings = cfg.Warnings

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}
