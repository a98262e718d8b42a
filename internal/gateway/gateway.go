// Package gateway defines the boundary to whatever actually delivers a
// message, and ships the two implementations the CLI can select.
//
// A gateway receives a canonical number, the message text, and the pacing
// duration. Pacing is the gateway's own load/think time before the message
// goes out; the gateway is expected to honour it. The orchestrator adds its
// own fixed delay between items on top.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/bulksend/internal/clock"
	"github.com/roach88/bulksend/internal/phone"
)

// Gateway kinds accepted by Build.
const (
	KindStub    = "stub"
	KindCommand = "command"
)

// Gateway delivers one message.
type Gateway interface {
	Dispatch(ctx context.Context, number phone.Number, message string, pacing time.Duration) error
}

// Func adapts a function to the Gateway interface.
type Func func(ctx context.Context, number phone.Number, message string, pacing time.Duration) error

// Dispatch implements Gateway.
func (f Func) Dispatch(ctx context.Context, number phone.Number, message string, pacing time.Duration) error {
	return f(ctx, number, message, pacing)
}

// DispatchError describes a failed delivery.
type DispatchError struct {
	Number phone.Number
	Reason string
	Err    error
}

func (e *DispatchError) Error() string {
	if e.Err != nil && e.Reason != "" {
		return fmt.Sprintf("dispatch to %s: %s: %v", e.Number, e.Reason, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("dispatch to %s: %v", e.Number, e.Err)
	}
	return fmt.Sprintf("dispatch to %s: %s", e.Number, e.Reason)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Options select and configure a gateway.
type Options struct {
	Kind    string
	Command string
	Args    []string
	Clock   clock.Clock
	Logger  *slog.Logger
}

// Build returns the gateway named by opts.Kind.
func Build(opts Options) (Gateway, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", KindStub:
		return NewStub(opts.Clock, opts.Logger), nil
	case KindCommand:
		if strings.TrimSpace(opts.Command) == "" {
			return nil, fmt.Errorf("gateway %q: command is required", KindCommand)
		}
		return NewCommand(opts.Command, opts.Args, opts.Logger), nil
	default:
		return nil, fmt.Errorf("unknown gateway kind %q: must be one of [%s %s]", opts.Kind, KindStub, KindCommand)
	}
}
