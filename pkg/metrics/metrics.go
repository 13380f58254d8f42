// Package metrics defines the counters, gauge and histogram named in the
// observability budget, and the /metrics handler that pkg/server mounts
// next to its /healthz probe. The handler serves the default Prometheus
// registry; the pipeline stages do not create a Metrics or update these
// collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the pipeline reports against. Construct one
// per process with NewMetrics; each Observe/Inc call is safe under
// concurrent pipeline stages.
type Metrics struct {
	BatchesProcessed    prometheus.Counter
	ActivitiesProcessed prometheus.Counter
	UpsertsProcessed    *prometheus.CounterVec
	LastCommittedVersion prometheus.Gauge
	ChunkWriteLatency   *prometheus.HistogramVec
}

// NewMetrics registers every collector against reg. Pass prometheus.NewRegistry()
// in tests to avoid colliding with the global default registry across
// parallel test binaries.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BatchesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "nftindexer",
			Name:      "batches_processed_total",
			Help:      "Total transaction batches that completed the full pipeline.",
		}),
		ActivitiesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "nftindexer",
			Name:      "activities_processed_total",
			Help:      "Total activity rows produced by the event remapper.",
		}),
		UpsertsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nftindexer",
			Name:      "upserts_processed_total",
			Help:      "Total rows upserted, labeled by destination table.",
		}, []string{"table"}),
		LastCommittedVersion: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "nftindexer",
			Name:      "last_committed_version",
			Help:      "Highest transaction version durably written so far.",
		}),
		ChunkWriteLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "nftindexer",
			Name:      "chunk_write_latency_seconds",
			Help:      "Latency of a single chunked upsert, labeled by table.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"table"}),
	}
}

// ObserveUpsert records n rows upserted into table and the latency the
// chunk took.
func (m *Metrics) ObserveUpsert(table string, n int, latency time.Duration) {
	if n == 0 {
		return
	}
	m.UpsertsProcessed.WithLabelValues(table).Add(float64(n))
	m.ChunkWriteLatency.WithLabelValues(table).Observe(latency.Seconds())
}

// Handler returns an http.Handler that can be mounted at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
