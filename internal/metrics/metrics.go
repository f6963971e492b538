package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Error types recorded on InvocationErrorsTotal
const (
	ErrorTypeCall   = "call"
	ErrorTypeStream = "stream"
	ErrorTypeDecode = "decode"
)

// Metrics holds all Prometheus metrics for agent invocations
type Metrics struct {
	registry *prometheus.Registry

	// Invocation metrics
	InvocationsTotal      *prometheus.CounterVec
	InvocationDuration    *prometheus.HistogramVec
	InvocationErrorsTotal *prometheus.CounterVec

	// Stream metrics
	StreamEventsTotal   *prometheus.CounterVec
	ResponseChunksTotal prometheus.Counter
	ResponseBytesTotal  prometheus.Counter
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		InvocationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_invocations_total",
				Help: "Total number of agent invocations",
			},
			[]string{"agent_id", "status"},
		),
		InvocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agent_invocation_duration_seconds",
				Help:    "Duration of agent invocations in seconds, stream drain included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"agent_id"},
		),
		InvocationErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_invocation_errors_total",
				Help: "Total number of failed agent invocations by failure stage",
			},
			[]string{"agent_id", "error_type"},
		),

		StreamEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_stream_events_total",
				Help: "Total number of response stream events by kind",
			},
			[]string{"kind"},
		),
		ResponseChunksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "agent_response_chunks_total",
				Help: "Total number of response chunks carrying bytes",
			},
		),
		ResponseBytesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "agent_response_bytes_total",
				Help: "Total number of response bytes received",
			},
		),
	}

	m.registerMetrics()

	return m
}

// registerMetrics registers all metrics with the registry
func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(m.InvocationsTotal)
	m.registry.MustRegister(m.InvocationDuration)
	m.registry.MustRegister(m.InvocationErrorsTotal)

	m.registry.MustRegister(m.StreamEventsTotal)
	m.registry.MustRegister(m.ResponseChunksTotal)
	m.registry.MustRegister(m.ResponseBytesTotal)
}

// RecordInvocation records the outcome and duration of one invocation
func (m *Metrics) RecordInvocation(agentID string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.InvocationsTotal.WithLabelValues(agentID, status).Inc()
	m.InvocationDuration.WithLabelValues(agentID).Observe(duration.Seconds())
}

// RecordError records a failed invocation by stage
func (m *Metrics) RecordError(agentID, errorType string) {
	m.InvocationErrorsTotal.WithLabelValues(agentID, errorType).Inc()
}

// RecordStream records what was received on a response stream
func (m *Metrics) RecordStream(kinds map[string]int, chunks, bytes int) {
	for kind, n := range kinds {
		m.StreamEventsTotal.WithLabelValues(kind).Add(float64(n))
	}
	m.ResponseChunksTotal.Add(float64(chunks))
	m.ResponseBytesTotal.Add(float64(bytes))
}

// WriteTextfile writes the registry in the text exposition format, for
// collection by the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
