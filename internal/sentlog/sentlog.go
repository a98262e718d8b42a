// Package sentlog persists the set of numbers that have already been
// messaged, so that a batch can be resumed or re-run without contacting
// anyone twice.
//
// The log is append-only. Record never deduplicates; Load collapses repeated
// lines into a set. A log that does not exist yet reads as empty.
package sentlog

import (
	"context"

	"github.com/roach88/bulksend/internal/phone"
)

// DefaultPath is the file used when no sent-log path is configured.
const DefaultPath = "sent_numbers.txt"

// Set is a snapshot of numbers already sent.
type Set map[phone.Number]struct{}

// Has reports whether n is in the set.
func (s Set) Has(n phone.Number) bool {
	_, ok := s[n]
	return ok
}

// Add inserts n into the set.
func (s Set) Add(n phone.Number) {
	s[n] = struct{}{}
}

// Len returns the number of distinct numbers.
func (s Set) Len() int {
	return len(s)
}

// Log is a durable, append-only record of sent numbers.
//
// Implementations assume a single writer.
type Log interface {
	// Load returns every number recorded so far.
	Load(ctx context.Context) (Set, error)
	// Record appends n. It must be durable when it returns nil.
	Record(ctx context.Context, n phone.Number) error
}
