package harness

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/roach88/bulksend/internal/orchestrator"
	"github.com/roach88/bulksend/internal/phone"
)

// AssertionError is returned when an assertion fails.
// It includes the transcript to help debug the failure.
type AssertionError struct {
	Type       string
	Expected   string
	Actual     string
	Transcript []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nTranscript:\n")
	for i, line := range e.Transcript {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, line)
	}

	return buf.String()
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertDispatched:
		return assertNumbers(r, a.Type, r.Dispatched, a.Numbers)
	case AssertRecorded:
		return assertNumbers(r, a.Type, r.Recorded, a.Numbers)
	case AssertEventOrder:
		return assertEventOrder(r, a)
	case AssertEventCount:
		return assertEventCount(r, a)
	case AssertSummary:
		return assertSummary(r, a)
	case AssertElapsed:
		return assertElapsed(r, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertNumbers(r *Result, typ string, got []phone.Number, want []string) error {
	if slices.Equal(numbers(want), got) {
		return nil
	}
	return &AssertionError{
		Type:       typ,
		Expected:   fmt.Sprintf("%v", want),
		Actual:     formatNumbers(got),
		Transcript: r.Transcript(),
	}
}

// assertEventOrder checks the kinds appear in order, matching each kind at
// the first position after the previous match. Other events may intervene.
func assertEventOrder(r *Result, a Assertion) error {
	pos := 0
	for _, want := range a.Events {
		found := false
		for pos < len(r.Events) {
			kind := r.Events[pos].Kind
			pos++
			if string(kind) == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:       AssertEventOrder,
				Expected:   fmt.Sprintf("events in order: %v", a.Events),
				Actual:     fmt.Sprintf("%s not found in remaining events", want),
				Transcript: r.Transcript(),
			}
		}
	}
	return nil
}

func assertEventCount(r *Result, a Assertion) error {
	count := 0
	for _, ev := range r.Events {
		if ev.Kind == orchestrator.EventKind(a.Event) {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:       AssertEventCount,
		Expected:   fmt.Sprintf("%s appears %d times", a.Event, a.Count),
		Actual:     fmt.Sprintf("%s appears %d times", a.Event, count),
		Transcript: r.Transcript(),
	}
}

func assertSummary(r *Result, a Assertion) error {
	actual := map[string]int{
		"total":      r.Summary.Total,
		"duplicates": r.Summary.Duplicates,
		"processed":  r.Summary.Processed,
		"sent":       r.Summary.Sent,
		"skipped":    r.Summary.Skipped,
		"failed":     r.Summary.Failed,
	}

	keys := make([]string, 0, len(a.Expect))
	for k := range a.Expect {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var mismatches []string
	for _, k := range keys {
		if actual[k] != a.Expect[k] {
			mismatches = append(mismatches, fmt.Sprintf("%s=%d (want %d)", k, actual[k], a.Expect[k]))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:       AssertSummary,
		Expected:   fmt.Sprintf("%v", a.Expect),
		Actual:     strings.Join(mismatches, ", "),
		Transcript: r.Transcript(),
	}
}

func assertElapsed(r *Result, a Assertion) error {
	want := time.Duration(a.Seconds) * time.Second
	if r.Elapsed == want {
		return nil
	}
	return &AssertionError{
		Type:       AssertElapsed,
		Expected:   want.String(),
		Actual:     r.Elapsed.String(),
		Transcript: r.Transcript(),
	}
}
