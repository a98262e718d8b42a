package orchestrator

import (
	"fmt"
	"time"

	"github.com/roach88/bulksend/internal/phone"
)

// EventKind distinguishes progress notices.
type EventKind string

const (
	// EventEstimate carries the up-front ETA for the whole batch in Remaining.
	EventEstimate EventKind = "estimate"
	// EventDispatching precedes a gateway call.
	EventDispatching EventKind = "dispatching"
	// EventSkipped marks a number found in the sent-log snapshot.
	EventSkipped EventKind = "skipped"
	// EventFailed marks a gateway error for one number.
	EventFailed EventKind = "failed"
	// EventSent marks a successful dispatch that has been recorded.
	EventSent EventKind = "sent"
	// EventProgress follows every item, whatever its outcome.
	EventProgress EventKind = "progress"
	// EventCompleted is the terminal notice of a finished run.
	EventCompleted EventKind = "completed"
	// EventCancelled is the terminal notice of a stopped run.
	EventCancelled EventKind = "cancelled"
)

// Event is one progress notice from a run.
type Event struct {
	Kind      EventKind     `json:"kind"`
	RunID     string        `json:"run_id,omitempty"`
	Index     int           `json:"index"`
	Total     int           `json:"total"`
	Number    phone.Number  `json:"number,omitempty"`
	Percent   float64       `json:"percent,omitempty"`
	Remaining time.Duration `json:"remaining,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// String renders the event as a log line for the operator.
func (e Event) String() string {
	switch e.Kind {
	case EventEstimate:
		return "Estimated time to completion: " + FormatMinutes(e.Remaining)
	case EventDispatching:
		return fmt.Sprintf("%d: %s", e.Index, e.Number)
	case EventSkipped:
		return fmt.Sprintf("Skipping %s (already sent)", e.Number)
	case EventFailed:
		return fmt.Sprintf("Error sending message to %s: %s", e.Number, e.Error)
	case EventSent:
		return fmt.Sprintf("Sent to %s", e.Number)
	case EventProgress:
		return fmt.Sprintf("Progress: %.2f%% - Remaining time: %s", e.Percent, FormatMinutes(e.Remaining))
	case EventCompleted:
		return "All messages sent!"
	case EventCancelled:
		return fmt.Sprintf("Run cancelled after %d of %d numbers", e.Index, e.Total)
	default:
		return string(e.Kind)
	}
}

// FormatMinutes renders d as "M minutes S seconds", truncating sub-second
// precision.
func FormatMinutes(d time.Duration) string {
	total := int64(d / time.Second)
	return fmt.Sprintf("%d minutes %d seconds", total/60, total%60)
}
