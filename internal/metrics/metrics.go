package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess = "success"
	ResultEmpty   = "empty"
	ResultError   = "error"

	StatusOK        = "ok"
	StatusEmpty     = "empty_input"
	StatusAllFailed = "all_failed"
	StatusCancelled = "cancelled"
)

var (
	ChunkCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deep_research",
			Subsystem: "pipeline",
			Name:      "chunk_calls_total",
			Help:      "The total number of per-chunk model calls by result.",
		},
		[]string{"result"},
	)
	Runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deep_research",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "The total number of report generation runs by outcome.",
		},
		[]string{"status"},
	)
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "deep_research",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock time of successful report generation runs.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
	ChunksPerRun = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "deep_research",
			Subsystem: "pipeline",
			Name:      "chunks_per_run",
			Help:      "Number of chunks a document was split into.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(ChunkCalls, Runs, RunDuration, ChunksPerRun)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
