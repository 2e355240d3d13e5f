// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Fetch metrics
	FetchesTotal  *prometheus.CounterVec
	FetchRetries  *prometheus.CounterVec
	FetchLatency  *prometheus.HistogramVec
	FetchFailures *prometheus.CounterVec

	// Archive metrics
	RawRecordsArchived *prometheus.CounterVec

	// Upsert metrics
	ProfilesUpserted   *prometheus.CounterVec
	ListEventsUpserted *prometheus.CounterVec
	BarsIngested       prometheus.Counter

	// Run metrics
	RunsTotal         *prometheus.CounterVec
	RunDuration       *prometheus.HistogramVec
	EntitiesSucceeded prometheus.Counter
	EntitiesFailed    prometheus.Counter

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "marketseer"
	}

	return &Metrics{
		FetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "fetches_total",
			Help:      "Total number of provider fetches by source, endpoint and outcome",
		}, []string{"source", "endpoint", "outcome"}),
		FetchRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "fetch_retries_total",
			Help:      "Total number of fetch retries after transient failures",
		}, []string{"source", "endpoint"}),
		FetchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "fetch_latency_seconds",
			Help:      "Provider fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		FetchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "fetch_failures_total",
			Help:      "Total number of exhausted fetches by source and error kind",
		}, []string{"source", "kind"}),

		RawRecordsArchived: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "raw_records_total",
			Help:      "Total number of raw payloads archived by source",
		}, []string{"source"}),

		ProfilesUpserted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "profiles_upserted_total",
			Help:      "Total number of profile upserts by outcome",
		}, []string{"outcome"}),
		ListEventsUpserted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "list_events_upserted_total",
			Help:      "Total number of list event upserts by outcome",
		}, []string{"outcome"}),
		BarsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "daily_bars_ingested_total",
			Help:      "Total number of daily bars written",
		}),

		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "runs_total",
			Help:      "Total number of ingest runs by kind",
		}, []string{"kind"}),
		RunDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "run_duration_seconds",
			Help:      "Ingest run duration in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"kind"}),
		EntitiesSucceeded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "entities_succeeded_total",
			Help:      "Total number of entities that completed ingest",
		}),
		EntitiesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "entities_failed_total",
			Help:      "Total number of entities that failed ingest",
		}),

		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp_seconds",
			Help:      "Unix timestamp of the last ingest run with zero failures",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
