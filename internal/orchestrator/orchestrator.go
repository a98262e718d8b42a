package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/bulksend/internal/clock"
	"github.com/roach88/bulksend/internal/gateway"
	"github.com/roach88/bulksend/internal/metrics"
	"github.com/roach88/bulksend/internal/phone"
	"github.com/roach88/bulksend/internal/sentlog"
	"github.com/roach88/bulksend/internal/store"
)

// Journal receives an audit trail of each run. store.Store implements it.
type Journal interface {
	BeginRun(ctx context.Context, r store.Run) error
	RecordAttempt(ctx context.Context, a store.Attempt) error
	FinishRun(ctx context.Context, runID, status string, c store.Counts, at time.Time) error
}

// Summary tallies a run.
type Summary struct {
	RunID      string        `json:"run_id"`
	Total      int           `json:"total"`
	Duplicates int           `json:"duplicates"`
	Processed  int           `json:"processed"`
	Sent       int           `json:"sent"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Cancelled  bool          `json:"cancelled"`
	Elapsed    time.Duration `json:"elapsed"`
}

func (s Summary) counts() store.Counts {
	return store.Counts{Sent: s.Sent, Skipped: s.Skipped, Failed: s.Failed}
}

// Orchestrator drives the send loop.
//
// Run must not be called concurrently on the same Orchestrator: the
// sent-log and the gateway are single-writer resources.
type Orchestrator struct {
	gateway    gateway.Gateway
	sentLog    sentlog.Log
	clock      clock.Clock
	delay      time.Duration
	normalizer phone.Normalizer
	journal    Journal
	metrics    *metrics.SendMetrics
	ids        RunIDGenerator
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces the wall clock. Tests use a fake clock so runs never
// sleep in real time.
func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithInterMessageDelay overrides DefaultInterMessageDelay.
func WithInterMessageDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.delay = d }
}

// WithNormalizer sets the normalizer used to re-canonicalize numbers right
// before dispatch.
func WithNormalizer(n phone.Normalizer) Option {
	return func(o *Orchestrator) { o.normalizer = n }
}

// WithJournal records every run and attempt.
func WithJournal(j Journal) Option {
	return func(o *Orchestrator) { o.journal = j }
}

// WithMetrics reports outcomes to m.
func WithMetrics(m *metrics.SendMetrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithRunIDGenerator overrides the UUIDv7 run IDs.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(o *Orchestrator) { o.ids = g }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an Orchestrator that dispatches through gw and remembers
// sent numbers in log.
func New(gw gateway.Gateway, log sentlog.Log, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway: gw,
		sentLog: log,
		clock:   clock.Real{},
		delay:   DefaultInterMessageDelay,
		ids:     UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Result is what a background run yields when it ends.
type Result struct {
	Summary Summary
	Err     error
}

// Start runs job on a new goroutine. Events are delivered on the returned
// channel, which is closed when the run ends; the single Result is then
// available on the second channel.
//
// The caller must drain events until it is closed.
func (o *Orchestrator) Start(ctx context.Context, job Job) (<-chan Event, <-chan Result) {
	events := make(chan Event, 64)
	result := make(chan Result, 1)

	go func() {
		defer close(result)
		sum, err := o.Run(ctx, job, events)
		close(events)
		result <- Result{Summary: sum, Err: err}
	}()

	return events, result
}

// Run executes job on the calling goroutine, sending events to events
// (which may be nil). It returns ErrEmptyBatch for an empty batch and
// ctx.Err() if cancelled; per-number failures never surface as an error.
func (o *Orchestrator) Run(ctx context.Context, job Job, events chan<- Event) (Summary, error) {
	if len(job.Batch) == 0 {
		return Summary{}, ErrEmptyBatch
	}

	numbers := Dedupe(job.Batch)
	count := len(numbers)
	started := o.clock.Now()
	sum := Summary{
		RunID:      o.ids.Generate(),
		Total:      count,
		Duplicates: len(job.Batch) - count,
	}
	r := &run{o: o, job: job, sum: &sum, events: events, total: count}

	r.emit(ctx, Event{Kind: EventEstimate, Remaining: Estimate(count, job.Pacing, o.delay)})

	snapshot, err := o.sentLog.Load(ctx)
	if err != nil {
		return sum, fmt.Errorf("read sent-log snapshot: %w", err)
	}

	o.logger.Info("run starting",
		"run_id", sum.RunID,
		"numbers", count,
		"duplicates", sum.Duplicates,
		"already_sent", snapshot.Len(),
		"pacing", job.Pacing,
		"delay", o.delay,
	)
	o.beginJournal(ctx, sum, job, started)
	o.metrics.SetQueued(count)

	for idx, n := range numbers {
		if ctx.Err() != nil {
			return r.cancelled(ctx, idx, started)
		}

		r.process(ctx, idx, n, snapshot)
		sum.Processed = idx + 1
		o.metrics.SetQueued(count - idx - 1)

		if err := o.clock.Sleep(ctx, o.delay); err != nil {
			return r.cancelled(ctx, idx+1, started)
		}

		r.emit(ctx, Event{
			Kind:      EventProgress,
			Index:     idx,
			Percent:   Progress(idx, count),
			Remaining: Remaining(idx, count, job.Pacing, o.delay),
		})
	}

	sum.Elapsed = o.clock.Now().Sub(started)
	o.finishJournal(ctx, sum, store.StatusCompleted)
	o.metrics.ObserveRun(store.StatusCompleted)
	o.logger.Info("run completed",
		"run_id", sum.RunID,
		"sent", sum.Sent,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"elapsed", sum.Elapsed,
	)
	r.emit(ctx, Event{Kind: EventCompleted, Index: count})
	return sum, nil
}

// run carries the state of one Run call.
type run struct {
	o      *Orchestrator
	job    Job
	sum    *Summary
	events chan<- Event
	total  int
}

// process handles the number at idx: skip, or dispatch and record.
func (r *run) process(ctx context.Context, idx int, n phone.Number, snapshot sentlog.Set) {
	o := r.o

	if snapshot.Has(n) {
		r.sum.Skipped++
		o.metrics.ObserveOutcome(metrics.OutcomeSkipped)
		o.recordAttempt(ctx, r.sum.RunID, idx, n, store.OutcomeSkipped, "")
		r.emit(ctx, Event{Kind: EventSkipped, Index: idx, Number: n})
		return
	}

	number := o.normalizer.Normalize(n)
	r.emit(ctx, Event{Kind: EventDispatching, Index: idx, Number: number})

	start := o.clock.Now()
	err := o.gateway.Dispatch(ctx, number, r.job.Message, r.job.Pacing)
	o.metrics.ObserveDispatch(o.clock.Now().Sub(start).Seconds())

	if err != nil {
		r.sum.Failed++
		o.metrics.ObserveOutcome(metrics.OutcomeFailed)
		o.logger.Warn("dispatch failed", "run_id", r.sum.RunID, "index", idx, "number", number, "error", err)
		o.recordAttempt(ctx, r.sum.RunID, idx, number, store.OutcomeFailed, err.Error())
		r.emit(ctx, Event{Kind: EventFailed, Index: idx, Number: number, Error: err.Error()})
		return
	}

	// The message is out; record it even if the run is being cancelled.
	if err := o.sentLog.Record(context.WithoutCancel(ctx), number); err != nil {
		reason := err.Error()
		r.sum.Failed++
		o.metrics.ObserveOutcome(metrics.OutcomeFailed)
		o.logger.Error("failed to record sent number",
			"run_id", r.sum.RunID,
			"number", number,
			"error", err,
		)
		o.recordAttempt(ctx, r.sum.RunID, idx, number, store.OutcomeFailed, reason)
		r.emit(ctx, Event{Kind: EventFailed, Index: idx, Number: number, Error: reason})
		return
	}
	r.sum.Sent++
	o.metrics.ObserveOutcome(metrics.OutcomeSent)
	o.recordAttempt(ctx, r.sum.RunID, idx, number, store.OutcomeSent, "")
	r.emit(ctx, Event{Kind: EventSent, Index: idx, Number: number})
}

func (r *run) cancelled(ctx context.Context, processed int, started time.Time) (Summary, error) {
	o := r.o
	r.sum.Cancelled = true
	r.sum.Elapsed = o.clock.Now().Sub(started)
	o.finishJournal(ctx, *r.sum, store.StatusCancelled)
	o.metrics.ObserveRun(store.StatusCancelled)
	o.logger.Info("run cancelled", "run_id", r.sum.RunID, "processed", processed, "total", r.total)
	r.emit(ctx, Event{Kind: EventCancelled, Index: processed})
	return *r.sum, ctx.Err()
}

// emit delivers ev unless events is nil. Once ctx is done, delivery is
// best-effort so a consumer that stopped draining cannot wedge the worker.
func (r *run) emit(ctx context.Context, ev Event) {
	if r.events == nil {
		return
	}
	ev.RunID = r.sum.RunID
	ev.Total = r.total

	select {
	case r.events <- ev:
		return
	default:
	}
	select {
	case r.events <- ev:
	case <-ctx.Done():
	}
}

func (o *Orchestrator) beginJournal(ctx context.Context, sum Summary, job Job, at time.Time) {
	if o.journal == nil {
		return
	}
	err := o.journal.BeginRun(context.WithoutCancel(ctx), store.Run{
		ID:            sum.RunID,
		StartedAt:     at,
		Source:        job.Source,
		Message:       job.Message,
		PacingSeconds: int(job.Pacing / time.Second),
		Total:         sum.Total,
	})
	if err != nil {
		o.logger.Error("journal: begin run failed", "run_id", sum.RunID, "error", err)
	}
}

func (o *Orchestrator) recordAttempt(ctx context.Context, runID string, idx int, n phone.Number, outcome, reason string) {
	if o.journal == nil {
		return
	}
	err := o.journal.RecordAttempt(context.WithoutCancel(ctx), store.Attempt{
		RunID:   runID,
		Seq:     int64(idx + 1),
		Index:   idx,
		Number:  string(n),
		Outcome: outcome,
		Error:   reason,
		At:      o.clock.Now(),
	})
	if err != nil {
		o.logger.Error("journal: record attempt failed", "run_id", runID, "index", idx, "error", err)
	}
}

func (o *Orchestrator) finishJournal(ctx context.Context, sum Summary, status string) {
	if o.journal == nil {
		return
	}
	err := o.journal.FinishRun(context.WithoutCancel(ctx), sum.RunID, status, sum.counts(), o.clock.Now())
	if err != nil && !errors.Is(err, context.Canceled) {
		o.logger.Error("journal: finish run failed", "run_id", sum.RunID, "error", err)
	}
}
