// Package metrics exposes Prometheus instruments for the send loop.
//
// All methods are nil-safe so callers can run without metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// SendMetrics counts dispatch outcomes and times gateway calls.
type SendMetrics struct {
	registry         *prometheus.Registry
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration prometheus.Histogram
	runsTotal        *prometheus.CounterVec
	queued           prometheus.Gauge
}

// NewSendMetrics registers instruments on a fresh registry.
func NewSendMetrics() *SendMetrics {
	reg := prometheus.NewRegistry()
	m := &SendMetrics{
		registry: reg,
		dispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bulksend",
			Name:      "dispatch_total",
			Help:      "Numbers processed by the send loop, by outcome",
		}, []string{"outcome"}),
		dispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bulksend",
			Name:      "dispatch_duration_seconds",
			Help:      "Wall time spent inside the dispatch gateway, pacing included",
			Buckets:   []float64{1, 5, 10, 15, 20, 30, 45, 60, 90, 120},
		}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bulksend",
			Name:      "runs_total",
			Help:      "Send runs finished, by final status",
		}, []string{"status"}),
		queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bulksend",
			Name:      "queued_numbers",
			Help:      "Numbers still waiting in the current run",
		}),
	}
	reg.MustRegister(m.dispatchTotal, m.dispatchDuration, m.runsTotal, m.queued)
	return m
}

// Registry returns the registry holding every instrument.
func (m *SendMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveOutcome counts one processed number.
func (m *SendMetrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(outcome).Inc()
}

// ObserveDispatch records how long a gateway call took.
func (m *SendMetrics) ObserveDispatch(seconds float64) {
	if m == nil {
		return
	}
	m.dispatchDuration.Observe(seconds)
}

// ObserveRun counts a finished run.
func (m *SendMetrics) ObserveRun(status string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
}

// SetQueued sets how many numbers remain in the current run.
func (m *SendMetrics) SetQueued(n int) {
	if m == nil {
		return
	}
	m.queued.Set(float64(n))
}

// WriteTextfile writes every instrument to path in the Prometheus text
// format, suitable for the node_exporter textfile collector.
func (m *SendMetrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
