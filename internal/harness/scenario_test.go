package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	content := `
name: test_scenario
description: "Test scenario for validation"
message: "Hi"
pacing: 30
delay: 2
sent: ["+60122222222"]
batch:
  - "0111111111"
  - 122222222
failures:
  "+60111111111": "boom"
assertions:
  - type: summary
    expect: { sent: 0 }
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, 30, scenario.Pacing)
	require.NotNil(t, scenario.Delay)
	assert.Equal(t, 2, *scenario.Delay)
	assert.Equal(t, []any{"0111111111", 122222222}, scenario.Batch)
	assert.Equal(t, "boom", scenario.Failures["+60111111111"])
	assert.Len(t, scenario.Assertions, 1)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: x
description: "x"
message: "x"
pacing: 10
assertion:
  - type: elapsed
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	base := "name: x\ndescription: \"x\"\nmessage: \"x\"\npacing: 10\n"

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "description: x\nmessage: x\nassertions: [{type: elapsed}]\n", "name is required"},
		{"missing description", "name: x\nmessage: x\nassertions: [{type: elapsed}]\n", "description is required"},
		{"missing message", "name: x\ndescription: x\nassertions: [{type: elapsed}]\n", "message is required"},
		{"negative pacing", "name: x\ndescription: x\nmessage: x\npacing: -1\nassertions: [{type: elapsed}]\n", "pacing must not be negative"},
		{"negative delay", base + "delay: -1\nassertions: [{type: elapsed}]\n", "delay must not be negative"},
		{"negative cancel", base + "cancel_after: -1\nassertions: [{type: elapsed}]\n", "cancel_after must not be negative"},
		{"no assertions", base, "assertions list is required"},
		{"missing type", base + "assertions: [{count: 1}]\n", "type is required"},
		{"unknown type", base + "assertions: [{type: trace_contains}]\n", "unknown assertion type"},
		{"short order", base + "assertions: [{type: event_order, events: [sent]}]\n", "at least 2 events"},
		{"unknown order event", base + "assertions: [{type: event_order, events: [sent, queued]}]\n", `unknown event "queued"`},
		{"unknown count event", base + "assertions: [{type: event_count, event: queued}]\n", `unknown event "queued"`},
		{"empty summary", base + "assertions: [{type: summary}]\n", "summary requires expect"},
		{"unknown summary field", base + "assertions: [{type: summary, expect: {delivered: 1}}]\n", `unknown summary field "delivered"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
