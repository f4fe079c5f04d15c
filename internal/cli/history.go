package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/xmsync/internal/catalog"
	"github.com/roach88/xmsync/internal/store"
	"github.com/roach88/xmsync/internal/value"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	RunID    string // optional - show one run's plans
	Entity   string // optional with RunID - show that entity's records
	Hash     string // optional - find runs that emitted a record
}

// HistoryRun is one journaled run in command output.
type HistoryRun struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	ConfigPath    string `json:"config_path"`
	ConfigHash    string `json:"config_hash"`
	EngineVersion string `json:"engine_version"`
	PlannedAt     string `json:"planned_at"`
	Entities      int    `json:"entities"`
	Records       int    `json:"records"`
}

// HistoryPlan is one entity plan of a journaled run.
type HistoryPlan struct {
	Entity      string       `json:"entity"`
	InputPath   string       `json:"input_path"`
	Sync        bool         `json:"sync"`
	RecordCount int          `json:"record_count"`
	Options     value.Object `json:"sync_options"`
}

// HistoryRecord is one journaled record.
type HistoryRecord struct {
	Index int          `json:"index"`
	Hash  string       `json:"hash"`
	Data  value.Object `json:"data"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query the plan journal",
		Long: `Query the SQLite plan journal written by "xmsync plan --db".

Without filters the most recent runs are listed, newest first.

Examples:
  xmsync history --db ./journal.db
  xmsync history --db ./journal.db --run 0192...
  xmsync history --db ./journal.db --run 0192... --entity people
  xmsync history --db ./journal.db --record <sha256>`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show the plans of one run")
	cmd.Flags().StringVar(&opts.Entity, "entity", "", "with --run, show this entity's records")
	cmd.Flags().StringVar(&opts.Hash, "record", "", "list runs that emitted a record with this hash")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Entity != "" && opts.RunID == "" {
		return NewExitError(ExitCommandError, "--entity requires --run")
	}
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.Database))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	switch {
	case opts.Hash != "":
		return historyByRecord(ctx, st, formatter, opts.Hash)
	case opts.Entity != "":
		return historyRecords(ctx, st, formatter, opts.RunID, opts.Entity)
	case opts.RunID != "":
		return historyPlans(ctx, st, formatter, opts.RunID)
	default:
		return historyRuns(ctx, st, formatter, opts.Limit)
	}
}

func historyRuns(ctx context.Context, st *store.Store, f *OutputFormatter, limit int) error {
	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	out := make([]HistoryRun, 0, len(runs))
	for _, r := range runs {
		out = append(out, HistoryRun{
			ID:            r.ID,
			Seq:           r.Seq,
			ConfigPath:    r.ConfigPath,
			ConfigHash:    r.ConfigHash,
			EngineVersion: r.EngineVersion,
			PlannedAt:     r.PlannedAt.Format(time.RFC3339),
			Entities:      r.Entities,
			Records:       r.Records,
		})
	}

	if f.Format == "json" {
		return f.Success(out)
	}

	w := f.Writer
	if len(out) == 0 {
		fmt.Fprintln(w, "No runs journaled.")
		return nil
	}
	for _, r := range out {
		fmt.Fprintf(w, "#%d %s  %s  %s  %d entities, %d records\n",
			r.Seq, r.ID, r.PlannedAt, r.ConfigPath, r.Entities, r.Records)
		f.VerboseLog("  config %s, engine %s", r.ConfigHash, r.EngineVersion)
	}
	return nil
}

func historyPlans(ctx context.Context, st *store.Store, f *OutputFormatter, runID string) error {
	plans, err := st.ReadPlans(ctx, runID)
	if err != nil {
		return journalReadError(err, "failed to read plans")
	}

	out := make([]HistoryPlan, 0, len(plans))
	for _, p := range plans {
		out = append(out, HistoryPlan{
			Entity:      string(p.Entity),
			InputPath:   p.InputPath,
			Sync:        p.Sync,
			RecordCount: p.RecordCount,
			Options:     p.Options,
		})
	}

	if f.Format == "json" {
		return f.Success(out)
	}

	w := f.Writer
	fmt.Fprintf(w, "Run %s\n", runID)
	for _, p := range out {
		data, err := value.MarshalCanonical(p.Options)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s  %s  sync=%t  %d records\n    %s\n", p.Entity, p.InputPath, p.Sync, p.RecordCount, data)
	}
	return nil
}

func historyRecords(ctx context.Context, st *store.Store, f *OutputFormatter, runID, entity string) error {
	e, err := catalog.Parse(entity)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --entity", err)
	}

	records, err := st.ReadRecords(ctx, runID, e)
	if err != nil {
		return journalReadError(err, "failed to read records")
	}

	out := make([]HistoryRecord, 0, len(records))
	for _, r := range records {
		out = append(out, HistoryRecord{Index: r.Index, Hash: r.Hash, Data: r.Data})
	}

	if f.Format == "json" {
		return f.Success(out)
	}

	w := f.Writer
	for _, r := range out {
		data, err := value.MarshalCanonical(r.Data)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "[%d] %s %s\n", r.Index, r.Hash, data)
	}
	return nil
}

func historyByRecord(ctx context.Context, st *store.Store, f *OutputFormatter, hash string) error {
	ids, err := st.RunsWithRecord(ctx, hash)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to query record", err)
	}

	if f.Format == "json" {
		return f.Success(ids)
	}

	w := f.Writer
	if len(ids) == 0 {
		fmt.Fprintf(w, "No runs emitted record %s\n", hash)
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	return nil
}

// journalReadError maps a missing run to a command error with a clear message.
func journalReadError(err error, message string) error {
	if errors.Is(err, store.ErrRunNotFound) {
		return WrapExitError(ExitCommandError, "run not found", err)
	}
	return WrapExitError(ExitCommandError, message, err)
}
