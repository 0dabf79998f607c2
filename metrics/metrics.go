// Package metrics exposes Prometheus instruments for ingestion, embedding,
// retrieval and generation.
//
// Every method is safe to call on a nil *Metrics, so components accept an
// optional collector without guarding each call.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scholia"

// Ingestion run outcomes.
const (
	OutcomeReady   = "ready"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	registry *prometheus.Registry

	ingestionRuns      *prometheus.CounterVec
	ingestionDuration  prometheus.Histogram
	chunksIngested     prometheus.Counter
	embeddingLatency   *prometheus.HistogramVec
	generationRequests *prometheus.CounterVec
	generationLatency  *prometheus.HistogramVec
	searches           prometheus.Counter
	chunksScanned      prometheus.Counter
	chunksSkipped      prometheus.Counter
}

// New creates a Metrics with its own registry, including the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ingestionRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "runs_total",
			Help:      "Ingestion runs by outcome.",
		}, []string{"outcome"}),
		ingestionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "run_duration_seconds",
			Help:      "Wall time of ingestion runs that claimed a document.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		}),
		chunksIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "chunks_total",
			Help:      "Chunks embedded and persisted.",
		}),
		embeddingLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "embedding",
			Name:      "request_duration_seconds",
			Help:      "Latency of embedding calls by result.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		generationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "requests_total",
			Help:      "Generation requests by kind and result.",
		}, []string{"kind", "result"}),
		generationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "request_duration_seconds",
			Help:      "Latency of generation requests by kind.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"kind"}),
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "searches_total",
			Help:      "Similarity searches executed.",
		}),
		chunksScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "chunks_scanned_total",
			Help:      "Chunks visited by exhaustive searches.",
		}),
		chunksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retrieval",
			Name:      "chunks_skipped_total",
			Help:      "Chunks skipped because their vector dimension differs from the query.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ingestionRuns,
		m.ingestionDuration,
		m.chunksIngested,
		m.embeddingLatency,
		m.generationRequests,
		m.generationLatency,
		m.searches,
		m.chunksScanned,
		m.chunksSkipped,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// IngestionFinished counts a run with its outcome. Runs that claimed a
// document also record their duration.
func (m *Metrics) IngestionFinished(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ingestionRuns.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSkipped {
		m.ingestionDuration.Observe(elapsed.Seconds())
	}
}

// ChunksIngested adds n persisted chunks.
func (m *Metrics) ChunksIngested(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.chunksIngested.Add(float64(n))
}

// ObserveEmbedding records one embedding call. Its signature matches
// ai.EmbedObserver.
func (m *Metrics) ObserveEmbedding(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.embeddingLatency.WithLabelValues(result(err)).Observe(elapsed.Seconds())
}

// GenerationFinished records one generation request of kind, such as
// "chat" or a content type.
func (m *Metrics) GenerationFinished(kind string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.generationRequests.WithLabelValues(kind, result(err)).Inc()
	m.generationLatency.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// SearchFinished records one similarity search that visited scanned chunks.
func (m *Metrics) SearchFinished(scanned int) {
	if m == nil {
		return
	}
	m.searches.Inc()
	m.chunksScanned.Add(float64(scanned))
}

// ChunkSkipped counts a chunk that could not be compared with a query.
func (m *Metrics) ChunkSkipped() {
	if m == nil {
		return
	}
	m.chunksSkipped.Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
