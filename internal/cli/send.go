package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/bulksend/internal/clock"
	"github.com/roach88/bulksend/internal/config"
	"github.com/roach88/bulksend/internal/gateway"
	"github.com/roach88/bulksend/internal/metrics"
	"github.com/roach88/bulksend/internal/orchestrator"
	"github.com/roach88/bulksend/internal/phone"
	"github.com/roach88/bulksend/internal/sentlog"
	"github.com/roach88/bulksend/internal/store"
)

// SendOptions holds flags for the send command.
type SendOptions struct {
	*RootOptions
	Project     string
	Pacing      int
	DryRun      bool
	Sheet       string
	SentLog     string
	Journal     string
	MetricsFile string

	// Gateway overrides the configured gateway (for testing).
	Gateway gateway.Gateway

	// Clock overrides the wall clock (for testing).
	Clock clock.Clock

	// RunIDs overrides the UUIDv7 run IDs (for testing).
	RunIDs orchestrator.RunIDGenerator
}

// SendResult is the JSON payload of a finished run.
type SendResult struct {
	Column  string               `json:"column"`
	Project string               `json:"project"`
	Pacing  int                  `json:"pacing_seconds"`
	DryRun  bool                 `json:"dry_run,omitempty"`
	Summary orchestrator.Summary `json:"summary"`
	Events  []orchestrator.Event `json:"events"`
}

// NewSendCommand creates the send command.
func NewSendCommand(rootOpts *RootOptions) *cobra.Command {
	return newSendCommand(&SendOptions{RootOptions: rootOpts})
}

// newSendCommand builds the command around opts, so tests can preset the
// gateway, clock, and run IDs.
func newSendCommand(opts *SendOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <file>",
		Short: "Send the project message to every number in a spreadsheet",
		Long: `Send the project's message to each phone number in the spreadsheet, one at a
time. The gateway waits --pacing seconds for its own load time, and a fixed
delay follows every number.

Numbers found in the sent-log are skipped. Each successful send is appended to
the sent-log immediately, so an interrupted run can simply be started again.
Ctrl-C stops after the current number.

Example:
  bulksend send owners.xlsx --project "M Suites" --pacing 30
  bulksend send owners.csv --project "M City" --dry-run`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Project, "project", "p", "", "template to send (default from config)")
	cmd.Flags().IntVar(&opts.Pacing, "pacing", 0, fmt.Sprintf("seconds the gateway waits per message, one of %v (default from config)", config.PacingChoices()))
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "use the stub gateway and leave the sent-log and journal untouched")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "worksheet name (default first sheet)")
	cmd.Flags().StringVar(&opts.SentLog, "sent-log", "", "sent-log path (default from config)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", `SQLite journal path (default from config, "" disables)`)
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")

	return cmd
}

func runSend(opts *SendOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadConfig(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	logger := setupLogging(opts.RootOptions, cfg, cmd.ErrOrStderr())

	// Flags override config only when given.
	flags := cmd.Flags()
	if !flags.Changed("project") {
		opts.Project = cfg.DefaultProject
	}
	if !flags.Changed("pacing") {
		opts.Pacing = cfg.DefaultPacing
	}
	if !flags.Changed("sent-log") {
		opts.SentLog = cfg.SentLog
	}
	if !flags.Changed("journal") {
		opts.Journal = cfg.Journal
	}
	if !flags.Changed("metrics-file") {
		opts.MetricsFile = cfg.MetricsFile
	}

	if err := config.ValidatePacing(opts.Pacing); err != nil {
		return fail(formatter, ExitCommandError, ErrCodeInvalidPacing, err.Error(), nil)
	}

	catalogue, err := cfg.Catalogue()
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeConfig, "invalid templates", err)
	}
	message, err := catalogue.Lookup(opts.Project)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeUnknownProject, err.Error(), nil)
	}

	col, batch, err := loadBatch(formatter, cfg, path, opts.Sheet)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	sentLog, err := openSentLog(ctx, opts, formatter)
	if err != nil {
		return err
	}

	gw, err := buildGateway(opts, cfg, clk, logger)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeConfig, "invalid gateway", err)
	}

	m := metrics.NewSendMetrics()
	orchOpts := []orchestrator.Option{
		orchestrator.WithClock(clk),
		orchestrator.WithInterMessageDelay(cfg.InterMessageDelay),
		orchestrator.WithNormalizer(phone.NewNormalizer(cfg.CountryCode)),
		orchestrator.WithMetrics(m),
		orchestrator.WithLogger(logger),
	}
	if opts.RunIDs != nil {
		orchOpts = append(orchOpts, orchestrator.WithRunIDGenerator(opts.RunIDs))
	}

	if !opts.DryRun && opts.Journal != "" {
		st, err := store.Open(opts.Journal)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeJournal, "failed to open journal", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()
		orchOpts = append(orchOpts, orchestrator.WithJournal(st))
	}

	if opts.DryRun {
		formatter.Line("Dry run: nothing will be delivered and the sent-log will not change.")
	}
	formatter.Line("Sending %q to %d number(s) from column %q, pacing %ds.", opts.Project, len(batch), col.Header, opts.Pacing)

	orch := orchestrator.New(gw, sentLog, orchOpts...)
	job := orchestrator.Job{
		Batch:   batch,
		Message: message,
		Pacing:  time.Duration(opts.Pacing) * time.Second,
		Source:  path,
	}

	events, results := orch.Start(ctx, job)
	var collected []orchestrator.Event
	for ev := range events {
		if formatter.IsJSON() {
			collected = append(collected, ev)
			continue
		}
		formatter.Line("%s", ev.String())
	}
	res := <-results

	if opts.MetricsFile != "" {
		if err := m.WriteTextfile(opts.MetricsFile); err != nil {
			return fail(formatter, ExitCommandError, ErrCodeWriteFailed, "failed to write metrics file", err)
		}
	}

	switch {
	case errors.Is(res.Err, orchestrator.ErrEmptyBatch):
		return fail(formatter, ExitCommandError, ErrCodeEmptyBatch, fmt.Sprintf("no phone numbers below the %q header", col.Header), res.Err)
	case errors.Is(res.Err, context.Canceled):
		return fail(formatter, ExitFailure, ErrCodeCancelled, "run cancelled", res.Err)
	case res.Err != nil:
		return fail(formatter, ExitCommandError, ErrCodeSentLog, "run aborted", res.Err)
	}

	if formatter.IsJSON() {
		return formatter.Success(SendResult{
			Column:  col.Header,
			Project: opts.Project,
			Pacing:  opts.Pacing,
			DryRun:  opts.DryRun,
			Summary: res.Summary,
			Events:  collected,
		})
	}
	s := res.Summary
	formatter.Line("Run %s: %d sent, %d skipped, %d failed, %d duplicate(s) ignored.", s.RunID, s.Sent, s.Skipped, s.Failed, s.Duplicates)
	return nil
}

// openSentLog returns the file sent-log, or for a dry run an in-memory copy
// of it so that skips still show but nothing is written.
func openSentLog(ctx context.Context, opts *SendOptions, f *OutputFormatter) (sentlog.Log, error) {
	file := sentlog.NewFile(opts.SentLog)
	if !opts.DryRun {
		return file, nil
	}

	snapshot, err := file.Load(ctx)
	if err != nil {
		return nil, fail(f, ExitCommandError, ErrCodeSentLog, "failed to read sent-log", err)
	}
	seed := make([]phone.Number, 0, snapshot.Len())
	for n := range snapshot {
		seed = append(seed, n)
	}
	return sentlog.NewMemory(seed...), nil
}

func buildGateway(opts *SendOptions, cfg *config.Config, clk clock.Clock, logger *slog.Logger) (gateway.Gateway, error) {
	if opts.Gateway != nil {
		return opts.Gateway, nil
	}
	if opts.DryRun {
		return gateway.NewStub(clk, logger), nil
	}
	return gateway.Build(gateway.Options{
		Kind:    cfg.Gateway.Kind,
		Command: cfg.Gateway.Command,
		Args:    cfg.Gateway.Args,
		Clock:   clk,
		Logger:  logger,
	})
}
