package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Message turn metrics
	MessageTurns       prometheus.Counter
	MessageTurnLatency prometheus.Histogram
	MessageTurnErrors  *prometheus.CounterVec

	// Engine cache metrics
	EngineBuilds    prometheus.Counter
	EngineEvictions prometheus.Counter
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics. Call once at startup.
func InitMetrics() *Metrics {
	metrics := &Metrics{
		MessageTurns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agenthub_message_turns_total",
			Help: "Total number of message turns processed",
		}),

		MessageTurnLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "agenthub_message_turn_duration_seconds",
			Help:    "Message turn latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}, // up to 2 minutes for LLM responses
		}),

		MessageTurnErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agenthub_message_turn_errors_total",
			Help: "Total number of failed message turns by error type",
		}, []string{"error_type"}),

		EngineBuilds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agenthub_engine_builds_total",
			Help: "Total number of conversation engines built",
		}),

		EngineEvictions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agenthub_engine_evictions_total",
			Help: "Total number of idle engines evicted from the cache",
		}),
	}

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance, nil before InitMetrics.
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordMessageTurn records one processed message turn
func (m *Metrics) RecordMessageTurn() {
	m.MessageTurns.Inc()
}

// RecordTurnLatency records message turn latency
func (m *Metrics) RecordTurnLatency(seconds float64) {
	m.MessageTurnLatency.Observe(seconds)
}

// RecordTurnError records a failed message turn
func (m *Metrics) RecordTurnError(errorType string) {
	m.MessageTurnErrors.WithLabelValues(errorType).Inc()
}

// RecordEngineBuild records one engine construction
func (m *Metrics) RecordEngineBuild() {
	m.EngineBuilds.Inc()
}

// RecordEngineEviction records one cache eviction
func (m *Metrics) RecordEngineEviction() {
	m.EngineEvictions.Inc()
}
