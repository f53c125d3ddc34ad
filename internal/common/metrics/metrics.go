// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "recommendation_duration_seconds",
			Help: "Duration of recommendation requests in seconds",
		},
	)

	RelaxationTriggered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_relaxation_triggered_total",
			Help: "Number of requests that reached a given relaxation tier",
		},
		[]string{"tier"},
	)

	ResultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_results_returned",
			Help:    "Number of results returned per request",
			Buckets: prometheus.LinearBuckets(0, 5, 11),
		},
	)

	RequestLogQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "request_log_queue_depth",
			Help: "Current depth of the asynchronous request log queue",
		},
	)

	RequestLogDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "request_log_dropped_total",
			Help: "Log records dropped because the queue was full",
		},
	)

	RequestLogFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "request_log_failures_total",
			Help: "Log records that failed to persist",
		},
	)
)
