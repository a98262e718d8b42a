package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/roach88/bulksend/internal/gateway"
	"github.com/roach88/bulksend/internal/orchestrator"
	"github.com/roach88/bulksend/internal/phone"
	"github.com/roach88/bulksend/internal/sentlog"
	"github.com/roach88/bulksend/internal/testutil"
)

// Epoch is the fake clock's start time in every scenario.
var Epoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// Harness holds the deterministic collaborators of one scenario run.
type Harness struct {
	clock   *testutil.FakeClock
	gateway *testutil.RecordingGateway
	sentLog *sentlog.Memory
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario gets a fresh fake clock, sent-log and gateway. The error
// return is reserved for harness problems; a failing assertion is reported
// through Result.Pass.
func Run(scenario *Scenario) (*Result, error) {
	if scenario == nil {
		return nil, errors.New("nil scenario")
	}

	clk := testutil.NewFakeClock(Epoch)
	h := &Harness{
		clock:   clk,
		gateway: testutil.NewRecordingGateway(clk),
		sentLog: sentlog.NewMemory(numbers(scenario.Sent)...),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	for n, reason := range scenario.Failures {
		h.gateway.Fail(phone.Number(n), reason)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []orchestrator.Option{
		orchestrator.WithClock(clk),
		orchestrator.WithNormalizer(phone.NewNormalizer(scenario.CountryCode)),
		orchestrator.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(scenario.RunID)),
		orchestrator.WithLogger(h.logger),
	}
	if scenario.Delay != nil {
		opts = append(opts, orchestrator.WithInterMessageDelay(time.Duration(*scenario.Delay)*time.Second))
	}
	orch := orchestrator.New(h.dispatcher(scenario.CancelAfter, cancel), h.sentLog, opts...)

	job := orchestrator.Job{
		Batch:   batch(scenario.Batch, phone.NewNormalizer(scenario.CountryCode)),
		Message: scenario.Message,
		Pacing:  time.Duration(scenario.Pacing) * time.Second,
		Source:  scenario.Name,
	}

	result := NewResult()
	events := make(chan orchestrator.Event, 64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range events {
			result.Events = append(result.Events, ev)
		}
	}()

	sum, err := orch.Run(ctx, job, events)
	close(events)
	wg.Wait()

	result.Summary = sum
	if err != nil {
		result.RunErr = err.Error()
	}
	result.Dispatched = h.gateway.Numbers()
	result.Recorded = h.sentLog.Records()
	result.Elapsed = clk.Now().Sub(Epoch)

	for _, a := range scenario.Assertions {
		if err := evaluate(result, a); err != nil {
			result.AddError(err.Error())
		}
	}

	return result, nil
}

// dispatcher wraps the recording gateway so the run is cancelled after
// limit dispatches have returned.
func (h *Harness) dispatcher(limit int, cancel context.CancelFunc) gateway.Gateway {
	if limit <= 0 {
		return h.gateway
	}
	var calls int
	return gateway.Func(func(ctx context.Context, n phone.Number, message string, pacing time.Duration) error {
		err := h.gateway.Dispatch(ctx, n, message, pacing)
		calls++
		if calls >= limit {
			cancel()
		}
		return err
	})
}

// batch normalizes raw cells, dropping blanks the way column discovery does.
func batch(cells []any, n phone.Normalizer) []phone.Number {
	out := make([]phone.Number, 0, len(cells))
	for _, c := range cells {
		if strings.TrimSpace(phone.Text(c)) == "" {
			continue
		}
		out = append(out, n.Normalize(c))
	}
	return out
}

func numbers(ss []string) []phone.Number {
	out := make([]phone.Number, len(ss))
	for i, s := range ss {
		out[i] = phone.Number(s)
	}
	return out
}

func formatNumbers(ns []phone.Number) string {
	ss := make([]string, len(ns))
	for i, n := range ns {
		ss[i] = string(n)
	}
	return fmt.Sprintf("%v", ss)
}
