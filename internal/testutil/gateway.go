package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roach88/bulksend/internal/clock"
	"github.com/roach88/bulksend/internal/phone"
)

// Dispatch is one recorded gateway call.
type Dispatch struct {
	Number  phone.Number
	Message string
	Pacing  time.Duration
}

// RecordingGateway records every Dispatch call and fails the numbers listed
// in Failures. When Clock is set it sleeps the pacing on it, standing in for
// the load time a real gateway spends.
type RecordingGateway struct {
	Clock    clock.Clock
	Failures map[phone.Number]string

	mu    sync.Mutex
	calls []Dispatch
}

// NewRecordingGateway returns a gateway that waits pacing on c.
func NewRecordingGateway(c clock.Clock) *RecordingGateway {
	return &RecordingGateway{Clock: c, Failures: map[phone.Number]string{}}
}

// Fail makes dispatches to n fail with reason.
func (g *RecordingGateway) Fail(n phone.Number, reason string) *RecordingGateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Failures == nil {
		g.Failures = map[phone.Number]string{}
	}
	g.Failures[n] = reason
	return g
}

// Dispatch implements gateway.Gateway.
func (g *RecordingGateway) Dispatch(ctx context.Context, number phone.Number, message string, pacing time.Duration) error {
	g.mu.Lock()
	g.calls = append(g.calls, Dispatch{Number: number, Message: message, Pacing: pacing})
	reason, fail := g.Failures[number]
	g.mu.Unlock()

	if g.Clock != nil {
		if err := g.Clock.Sleep(ctx, pacing); err != nil {
			return err
		}
	}
	if fail {
		return errors.New(reason)
	}
	return nil
}

// Calls returns every recorded call in order.
func (g *RecordingGateway) Calls() []Dispatch {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Dispatch(nil), g.calls...)
}

// Numbers returns the dispatched numbers in order.
func (g *RecordingGateway) Numbers() []phone.Number {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]phone.Number, len(g.calls))
	for i, c := range g.calls {
		out[i] = c.Number
	}
	return out
}
