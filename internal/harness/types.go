package harness

import (
	"time"

	"github.com/roach88/bulksend/internal/orchestrator"
	"github.com/roach88/bulksend/internal/phone"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Events holds every notice the run emitted, in order.
	Events []orchestrator.Event `json:"events"`

	// Summary is what the orchestrator returned.
	Summary orchestrator.Summary `json:"summary"`

	// RunErr is the error Run returned, if any. Cancellation lands here.
	RunErr string `json:"run_err,omitempty"`

	// Dispatched lists the numbers the gateway saw.
	Dispatched []phone.Number `json:"dispatched"`

	// Recorded is the sent-log contents after the run.
	Recorded []phone.Number `json:"recorded"`

	// Elapsed is the fake time that passed during the run.
	Elapsed time.Duration `json:"elapsed"`

	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Transcript renders the events the way the CLI prints them.
func (r *Result) Transcript() []string {
	lines := make([]string, len(r.Events))
	for i, ev := range r.Events {
		lines[i] = ev.String()
	}
	return lines
}
