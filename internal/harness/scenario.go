package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bulksend/internal/orchestrator"
)

// Scenario defines one send run and what must hold afterwards.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RunID is the fixed run ID. Defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	Message string `yaml:"message"`

	// Pacing is the gateway load time in seconds.
	Pacing int `yaml:"pacing"`

	// Delay overrides the inter-message delay, in seconds.
	Delay *int `yaml:"delay,omitempty"`

	CountryCode string `yaml:"country_code,omitempty"`

	// Sent seeds the sent-log before the run.
	Sent []string `yaml:"sent,omitempty"`

	// Batch holds raw cell values. Numbers decode as ints, which exercises
	// the same coercion a spreadsheet numeric cell goes through.
	Batch []any `yaml:"batch"`

	// Failures maps canonical numbers to the gateway error they produce.
	Failures map[string]string `yaml:"failures,omitempty"`

	// CancelAfter cancels the run once this many dispatches have returned.
	// Zero disables cancellation.
	CancelAfter int `yaml:"cancel_after,omitempty"`

	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the outcome of a run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Numbers is the exact expected list (dispatched, recorded).
	Numbers []string `yaml:"numbers,omitempty"`

	// Events is the expected relative order of event kinds (event_order).
	Events []string `yaml:"events,omitempty"`

	// Event is the kind counted by event_count.
	Event string `yaml:"event,omitempty"`

	// Count is the expected number of occurrences (event_count).
	Count int `yaml:"count,omitempty"`

	// Expect is a subset of summary counters (summary).
	Expect map[string]int `yaml:"expect,omitempty"`

	// Seconds is the expected fake elapsed time (elapsed).
	Seconds int `yaml:"seconds,omitempty"`
}

// Assertion type constants.
const (
	AssertDispatched = "dispatched"
	AssertRecorded   = "recorded"
	AssertEventOrder = "event_order"
	AssertEventCount = "event_count"
	AssertSummary    = "summary"
	AssertElapsed    = "elapsed"
)

var eventKinds = map[string]bool{
	string(orchestrator.EventEstimate):    true,
	string(orchestrator.EventDispatching): true,
	string(orchestrator.EventSkipped):     true,
	string(orchestrator.EventFailed):      true,
	string(orchestrator.EventSent):        true,
	string(orchestrator.EventProgress):    true,
	string(orchestrator.EventCompleted):   true,
	string(orchestrator.EventCancelled):   true,
}

var summaryFields = map[string]bool{
	"total":      true,
	"duplicates": true,
	"processed":  true,
	"sent":       true,
	"skipped":    true,
	"failed":     true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
// An empty batch is allowed: it must surface as the orchestrator's error.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Message == "" {
		return fmt.Errorf("message is required")
	}

	if s.Pacing < 0 {
		return fmt.Errorf("pacing must not be negative, got %d", s.Pacing)
	}

	if s.Delay != nil && *s.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %d", *s.Delay)
	}

	if s.CancelAfter < 0 {
		return fmt.Errorf("cancel_after must not be negative, got %d", s.CancelAfter)
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertDispatched, AssertRecorded:
		// An empty list is a valid expectation.
	case AssertEventOrder:
		if len(a.Events) < 2 {
			return fmt.Errorf("assertions[%d]: event_order requires at least 2 events", index)
		}
		for _, ev := range a.Events {
			if !eventKinds[ev] {
				return fmt.Errorf("assertions[%d]: unknown event %q", index, ev)
			}
		}
	case AssertEventCount:
		if !eventKinds[a.Event] {
			return fmt.Errorf("assertions[%d]: unknown event %q", index, a.Event)
		}
	case AssertSummary:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: summary requires expect", index)
		}
		for field := range a.Expect {
			if !summaryFields[field] {
				return fmt.Errorf("assertions[%d]: unknown summary field %q", index, field)
			}
		}
	case AssertElapsed:
		if a.Seconds < 0 {
			return fmt.Errorf("assertions[%d]: seconds must not be negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
