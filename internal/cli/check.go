package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/bulksend/internal/phone"
	"github.com/roach88/bulksend/internal/store"
)

// CheckResult is one entry of the check command's JSON payload.
type CheckResult struct {
	Input string `json:"input"`
	phone.Verdict
	SentCount int `json:"sent_count"`
}

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Journal string
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <number>...",
		Short: "Normalize numbers and report whether they look valid",
		Long: `Normalize each argument the way a spreadsheet cell is normalized, then check
it against phone-number metadata. When the journal exists, also report how
many times each number was sent.

Exits 1 if any number is invalid.

Example:
  bulksend check 012-345 6789
  bulksend check 0123456789 +6591234567`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "SQLite journal path (default from config)")

	return cmd
}

func runCheck(opts *CheckOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("journal") {
		opts.Journal = cfg.Journal
	}
	normalizer := phone.NewNormalizer(cfg.CountryCode)

	results := make([]CheckResult, len(args))
	invalid := 0
	for i, arg := range args {
		v := phone.Check(normalizer.Normalize(arg))
		if !v.Valid {
			invalid++
		}
		results[i] = CheckResult{Input: arg, Verdict: v}
	}

	if err := countSent(ctxOrBackground(cmd), opts.Journal, results); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeJournal, "failed to read journal", err)
	}

	if formatter.IsJSON() {
		if err := formatter.Success(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			line := fmt.Sprintf("%s -> %s", r.Input, describeVerdict(r.Verdict))
			if r.SentCount > 0 {
				line += fmt.Sprintf(", sent %d time(s)", r.SentCount)
			}
			formatter.Line("%s", line)
		}
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d of %d number(s) invalid", ErrCodeInvalidNumber, invalid, len(args)))
	}
	return nil
}

// countSent fills SentCount from the journal. A missing journal file is
// left alone so check never creates one.
func countSent(ctx context.Context, path string, results []CheckResult) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	for i := range results {
		n, err := st.CountSent(ctx, string(results[i].Number))
		if err != nil {
			return err
		}
		results[i].SentCount = n
	}
	return nil
}
