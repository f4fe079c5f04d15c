package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/config"
	"github.com/roach88/xmsync/internal/engine"
	"github.com/roach88/xmsync/internal/input"
	"github.com/roach88/xmsync/internal/store"
	"github.com/roach88/xmsync/internal/value"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	Database string
	Entities []string

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	return newPlanCommand(&PlanOptions{RootOptions: rootOpts})
}

func newPlanCommand(opts *PlanOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <config>",
		Short: "Build sync plans from a config and its input files",
		Long: `Build the record array and sync options for every configured entity.

Entities are planned in dependency order: sites, groups, people, devices,
groupMembers. Each plan is printed as canonical JSON. With --db the run is
also appended to a SQLite plan journal.

Example:
  xmsync plan ./xmsync.cue
  xmsync plan --db ./journal.db --entity people --entity devices ./xmsync.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "append the run to this SQLite plan journal")
	cmd.Flags().StringArrayVar(&opts.Entities, "entity", nil, "plan only this entity (repeatable)")

	return cmd
}

func runPlan(opts *PlanOptions, configPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		_ = formatter.Error(configErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose, cfg.Logging)
	for _, w := range cfg.Warnings {
		logger.Warn("config warning", "warning", w)
	}

	var only []catalog.Entity
	for _, name := range opts.Entities {
		e, err := catalog.Parse(name)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --entity", err)
		}
		only = append(only, e)
	}

	runIDs := opts.RunIDs
	if runIDs == nil {
		runIDs = engine.UUIDv7Generator{}
	}
	eng := engine.New(cfg, input.FileReader{},
		engine.WithLogger(logger),
		engine.WithRunIDGenerator(runIDs),
	)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	run, err := eng.Plan(ctx, only...)
	if err != nil {
		if engine.IsInputError(err) {
			_ = formatter.Error(ErrCodeInput, err.Error(), nil)
		}
		return WrapExitError(ExitCommandError, "failed to plan", err)
	}

	if opts.Database != "" {
		if err := journalRun(ctx, opts.Database, cfg.Path, run, logger); err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to journal run", err)
		}
	}

	return outputPlan(formatter, run)
}

// journalRun appends run to the plan journal at dbPath, creating it if needed.
func journalRun(ctx context.Context, dbPath, configPath string, run *engine.Run, logger *slog.Logger) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	if err := st.WriteRun(ctx, configPath, run); err != nil {
		return err
	}
	logger.Info("run journaled", "db", dbPath, "run_id", run.ID)
	return nil
}

// outputPlan prints the run. JSON output wraps the plans in a CLIResponse;
// text output prints one canonical JSON line per entity.
func outputPlan(formatter *OutputFormatter, run *engine.Run) error {
	if formatter.Format == "json" {
		return formatter.Success(map[string]any{
			"run_id":      run.ID,
			"config_hash": run.ConfigHash,
			"plans":       run.Value(),
		})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "run %s\n", run.ID)
	for _, p := range run.Plans {
		data, err := value.MarshalCanonical(p.Value())
		if err != nil {
			return fmt.Errorf("marshal %s plan: %w", p.Entity, err)
		}
		fmt.Fprintf(w, "%s (%d records)\n%s\n", p.Entity, len(p.Records), data)
	}
	return nil
}
