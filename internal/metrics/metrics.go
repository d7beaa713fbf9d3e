// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insights_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "insights_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Analysis
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insights_analysis_duration_seconds",
			Help:    "Time to load a snapshot and run one analysis",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	ConsumersAnalyzed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_consumers_analyzed_total",
			Help: "Total consumer analyses performed",
		},
	)

	SnapshotErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_snapshot_errors_total",
			Help: "Snapshot loads that failed",
		},
		[]string{"operation"},
	)

	// Population digest, refreshed by the maintenance ticker.
	ReorderBucket = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "insights_reorder_probability_consumers",
			Help: "Consumers per reorder probability bucket at the last digest",
		},
		[]string{"bucket"},
	)

	AverageReorderProbability = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "insights_average_reorder_probability",
			Help: "Mean reorder probability at the last digest",
		},
	)

	ChurnRiskConsumers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "insights_churn_risk_consumers",
			Help: "Consumers at high churn risk at the last digest",
		},
	)

	// Cache
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_cache_hits_total",
			Help: "Response cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_cache_misses_total",
			Help: "Response cache misses",
		},
	)

	// Background work
	ChangeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_change_events_total",
			Help: "Retail table change notifications received",
		},
		[]string{"table"},
	)

	ReconcileRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insights_reconcile_runs_total",
			Help: "Consumer aggregate reconciliation runs",
		},
		[]string{"result"},
	)

	ReconciledConsumers = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insights_reconciled_consumers_total",
			Help: "Consumer rows whose stored aggregates were corrected",
		},
	)
)

// Bucket label values for ReorderBucket.
const (
	BucketHigh   = "high"
	BucketMedium = "medium"
	BucketLow    = "low"
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAnalysis records one analysis call over n consumers.
func RecordAnalysis(operation string, consumers int, duration time.Duration) {
	AnalysisDuration.WithLabelValues(operation).Observe(duration.Seconds())
	ConsumersAnalyzed.Add(float64(consumers))
}

// RecordCache records a cache lookup.
func RecordCache(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// RecordReconcile records one reconciliation run.
func RecordReconcile(updated int64, err error) {
	if err != nil {
		ReconcileRuns.WithLabelValues("error").Inc()
		return
	}
	ReconcileRuns.WithLabelValues("ok").Inc()
	ReconciledConsumers.Add(float64(updated))
}

// SetDigest publishes the population digest gauges.
func SetDigest(high, medium, low int, average float64, churnRisk int) {
	ReorderBucket.WithLabelValues(BucketHigh).Set(float64(high))
	ReorderBucket.WithLabelValues(BucketMedium).Set(float64(medium))
	ReorderBucket.WithLabelValues(BucketLow).Set(float64(low))
	AverageReorderProbability.Set(average)
	ChurnRiskConsumers.Set(float64(churnRisk))
}
