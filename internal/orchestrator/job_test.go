package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/bulksend/internal/phone"
)

func TestDedupe(t *testing.T) {
	in := []phone.Number{"+601", "+602", "+601", "+603", "+602"}
	assert.Equal(t, []phone.Number{"+601", "+602", "+603"}, Dedupe(in))
	assert.Empty(t, Dedupe(nil))
}

func TestEstimate(t *testing.T) {
	assert.Equal(t, 70*time.Second, Estimate(2, 30*time.Second, 5*time.Second))
	assert.Equal(t, time.Duration(0), Estimate(0, 30*time.Second, 5*time.Second))
}

func TestProgressAndRemaining(t *testing.T) {
	assert.InDelta(t, 100.0/3, Progress(0, 3), 1e-9)
	assert.InDelta(t, 100.0, Progress(2, 3), 1e-9)
	assert.Equal(t, 30*time.Second, Remaining(0, 3, 10*time.Second, 5*time.Second))
	assert.Equal(t, time.Duration(0), Remaining(2, 3, 10*time.Second, 5*time.Second))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0 minutes 0 seconds", FormatMinutes(0))
	assert.Equal(t, "1 minutes 10 seconds", FormatMinutes(70*time.Second))
	assert.Equal(t, "10 minutes 0 seconds", FormatMinutes(600*time.Second+900*time.Millisecond))
}

func TestEvent_String(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{Event{Kind: EventEstimate, Remaining: 125 * time.Second}, "Estimated time to completion: 2 minutes 5 seconds"},
		{Event{Kind: EventDispatching, Index: 3, Number: "+601"}, "3: +601"},
		{Event{Kind: EventSent, Number: "+601"}, "Sent to +601"},
		{Event{Kind: EventCompleted}, "All messages sent!"},
	}
	for _, tt := range tests {
		t.Run(string(tt.ev.Kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ev.String())
		})
	}
}
