package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/bulksend/internal/clock"
	"github.com/roach88/bulksend/internal/phone"
)

// Stub pretends to deliver: it waits out the pacing on its clock, logs, and
// succeeds. Used for dry runs.
type Stub struct {
	clock  clock.Clock
	logger *slog.Logger
}

// NewStub returns a Stub. Nil arguments fall back to the real clock and the
// default logger.
func NewStub(c clock.Clock, logger *slog.Logger) *Stub {
	if c == nil {
		c = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Stub{clock: c, logger: logger}
}

// Dispatch implements Gateway.
func (s *Stub) Dispatch(ctx context.Context, number phone.Number, message string, pacing time.Duration) error {
	if err := s.clock.Sleep(ctx, pacing); err != nil {
		return &DispatchError{Number: number, Reason: "interrupted while loading", Err: err}
	}
	s.logger.Info("stub dispatch", "number", number, "message_len", len(message), "pacing", pacing)
	return nil
}
