// Package metrics provides the centralized Prometheus metrics registry for the service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "match_oracle",
		Name:      "upstream_requests_total",
		Help:      "Total number of requests to the football data provider",
	}, []string{"endpoint", "outcome"})
	PredictionsGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "match_oracle",
		Name:      "predictions_generated_total",
		Help:      "Total number of predictions generated",
	}, []string{"method"})
	H2HQuotaDeniedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "match_oracle",
		Name:      "h2h_quota_denied_total",
		Help:      "Total number of H2H refreshes denied by the daily quota",
	})
	RecordsSweptTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "match_oracle",
		Name:      "records_swept_total",
		Help:      "Total number of records deleted by the retention sweeper",
	}, []string{"collection"})
	AuthFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "match_oracle",
		Name:      "auth_failures_total",
		Help:      "Total number of failed admin authentications",
	}, []string{"reason"})
)

// Gauge metrics
var (
	H2HQuotaUsed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "match_oracle",
		Name:      "h2h_quota_used",
		Help:      "H2H lookups charged against today's quota",
	})
	CachedMatches = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "match_oracle",
		Name:      "cached_matches",
		Help:      "Number of matches currently cached",
	})
)

// Histogram metrics
var (
	PredictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "match_oracle",
		Name:      "prediction_duration_seconds",
		Help:      "Time taken to compute one match prediction",
		Buckets:   prometheus.DefBuckets,
	})
	UpstreamRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "match_oracle",
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of football data provider requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
)

// InitRegistry initializes the global Prometheus registry and registers all metrics
func InitRegistry() {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			UpstreamRequestsTotal,
			PredictionsGeneratedTotal,
			H2HQuotaDeniedTotal,
			RecordsSweptTotal,
			AuthFailuresTotal,
			H2HQuotaUsed,
			CachedMatches,
			PredictionDuration,
			UpstreamRequestDuration,
		)
	})
}

// GetRegistry returns the global registry
func GetRegistry() *prometheus.Registry {
	InitRegistry()
	return registry
}

// Handler returns an HTTP handler for the metrics endpoint
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordUpstreamRequest records a provider request with its outcome and latency
func RecordUpstreamRequest(endpoint, outcome string, durationSeconds float64) {
	UpstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// RecordPredictionGenerated records one generated prediction by method
func RecordPredictionGenerated(method string) {
	PredictionsGeneratedTotal.WithLabelValues(method).Inc()
}

// RecordQuotaDenied records an H2H refresh denied by the daily quota
func RecordQuotaDenied() {
	H2HQuotaDeniedTotal.Inc()
}

// UpdateQuotaUsed updates the quota usage gauge
func UpdateQuotaUsed(used int) {
	H2HQuotaUsed.Set(float64(used))
}

// ObservePredictionDuration records how long one prediction took to compute
func ObservePredictionDuration(seconds float64) {
	PredictionDuration.Observe(seconds)
}

// UpdateCachedMatches updates the cached match count gauge
func UpdateCachedMatches(count int64) {
	CachedMatches.Set(float64(count))
}

// RecordRecordsSwept records retention deletions for a collection
func RecordRecordsSwept(collection string, count int64) {
	RecordsSweptTotal.WithLabelValues(collection).Add(float64(count))
}

// RecordAuthFailure records a failed admin authentication
func RecordAuthFailure(reason string) {
	AuthFailuresTotal.WithLabelValues(reason).Inc()
}
