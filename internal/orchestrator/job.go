package orchestrator

import (
	"errors"
	"time"

	"github.com/roach88/bulksend/internal/phone"
)

// DefaultInterMessageDelay is the fixed pause after every item.
const DefaultInterMessageDelay = 5 * time.Second

// ErrEmptyBatch is returned when a run is started with no numbers.
var ErrEmptyBatch = errors.New("empty batch: nothing to send")

// Job is everything one run needs. It is built by the caller and never
// mutated by the orchestrator.
type Job struct {
	Batch   []phone.Number
	Message string
	Pacing  time.Duration
	// Source names where the batch came from, for the journal.
	Source string
}

// Dedupe returns numbers with repeats removed, keeping the first occurrence
// and otherwise preserving order.
func Dedupe(numbers []phone.Number) []phone.Number {
	seen := make(map[phone.Number]struct{}, len(numbers))
	out := make([]phone.Number, 0, len(numbers))
	for _, n := range numbers {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Estimate is the projected duration of a run over count numbers.
func Estimate(count int, pacing, delay time.Duration) time.Duration {
	return time.Duration(count) * (pacing + delay)
}

// Progress returns the completion percentage after the item at idx
// (0-based) of count.
func Progress(idx, count int) float64 {
	return float64(idx+1) / float64(count) * 100
}

// Remaining is the projected time left after the item at idx.
func Remaining(idx, count int, pacing, delay time.Duration) time.Duration {
	return time.Duration(count-idx-1) * (pacing + delay)
}
