// Package telemetry provides observability for the debate engine.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation path labels.
const (
	PathLLM      = "llm"
	PathFallback = "fallback"
)

// Metrics collects Prometheus metrics for the debate engine.
type Metrics struct {
	registry *prometheus.Registry

	turnsTotal          *prometheus.CounterVec
	generationDuration  *prometheus.HistogramVec
	storeFailuresTotal  prometheus.Counter
	conversationsEnded  prometheus.Counter
	transcriptsArchived prometheus.Counter
}

// NewMetrics creates a Metrics collector backed by its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kontra_turns_total",
			Help: "Agent turns generated, by generation path.",
		}, []string{"path"}),
		generationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kontra_generation_duration_seconds",
			Help:    "Time spent producing one agent reply.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"path"}),
		storeFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kontra_store_failures_total",
			Help: "Best-effort persistence operations that failed.",
		}),
		conversationsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kontra_conversations_deleted_total",
			Help: "Conversations explicitly deleted by callers.",
		}),
		transcriptsArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kontra_transcripts_archived_total",
			Help: "Conversation transcripts archived before deletion.",
		}),
	}

	reg.MustRegister(
		m.turnsTotal,
		m.generationDuration,
		m.storeFailuresTotal,
		m.conversationsEnded,
		m.transcriptsArchived,
	)
	return m
}

// RecordTurn records one completed agent turn and its generation time.
// path is PathLLM or PathFallback.
func (m *Metrics) RecordTurn(path string, duration time.Duration) {
	m.turnsTotal.WithLabelValues(path).Inc()
	m.generationDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordStoreFailure records a failed best-effort store write.
func (m *Metrics) RecordStoreFailure() {
	m.storeFailuresTotal.Inc()
}

// RecordDeletion records an explicit conversation deletion.
func (m *Metrics) RecordDeletion() {
	m.conversationsEnded.Inc()
}

// RecordArchive records a transcript archived before deletion.
func (m *Metrics) RecordArchive() {
	m.transcriptsArchived.Inc()
}

// Handler returns an HTTP handler serving the Prometheus exposition.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
