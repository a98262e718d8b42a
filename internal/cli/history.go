package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/bulksend/internal/store"
)

// DefaultHistoryLimit is how many runs history lists by default.
const DefaultHistoryLimit = 10

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Journal string
	Limit   int
}

// RunDetail is the JSON payload of history <run-id>.
type RunDetail struct {
	Run      store.Run       `json:"run"`
	Attempts []store.Attempt `json:"attempts"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List journaled runs, or the attempts of one run",
		Long: `List the most recent runs recorded in the SQLite journal, newest first.
With a run ID, list every attempt of that run in order.

Example:
  bulksend history --limit 5
  bulksend history 0190b7a4-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "SQLite journal path (default from config)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", DefaultHistoryLimit, "maximum number of runs to list")

	return cmd
}

func runHistory(opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("journal") {
		opts.Journal = cfg.Journal
	}
	if opts.Journal == "" {
		return fail(formatter, ExitCommandError, ErrCodeJournal, "journal is disabled", nil)
	}

	st, err := store.Open(opts.Journal)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeJournal, "failed to open journal", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	if len(args) == 1 {
		return showRun(formatter, st, cmd, args[0])
	}

	runs, err := st.ListRuns(ctxOrBackground(cmd), opts.Limit)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeJournal, "failed to list runs", err)
	}

	if formatter.IsJSON() {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		formatter.Line("No runs recorded.")
		return nil
	}
	for _, r := range runs {
		formatter.Line("%s  %s  %-9s  %d total: %d sent, %d skipped, %d failed  (%s, %ds)",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Status,
			r.Total, r.Sent, r.Skipped, r.Failed, r.Source, r.PacingSeconds)
	}
	return nil
}

func showRun(formatter *OutputFormatter, st *store.Store, cmd *cobra.Command, runID string) error {
	ctx := ctxOrBackground(cmd)

	run, err := st.GetRun(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID), nil)
	}
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeJournal, "failed to read run", err)
	}
	attempts, err := st.ReadAttempts(ctx, runID)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeJournal, "failed to read attempts", err)
	}

	if formatter.IsJSON() {
		return formatter.Success(RunDetail{Run: run, Attempts: attempts})
	}
	formatter.Line("Run %s (%s): %d sent, %d skipped, %d failed of %d", run.ID, run.Status, run.Sent, run.Skipped, run.Failed, run.Total)
	for _, a := range attempts {
		if a.Error != "" {
			formatter.Line("  %d. %s  %s: %s", a.Index+1, a.Number, a.Outcome, a.Error)
			continue
		}
		formatter.Line("  %d. %s  %s", a.Index+1, a.Number, a.Outcome)
	}
	return nil
}
