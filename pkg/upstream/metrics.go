package upstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for upstream requests, shared by the content and
// speech clients through the service label.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tapword_upstream_requests_total",
		Help: "Total upstream requests by service, endpoint and status",
	}, []string{"service", "endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tapword_upstream_request_duration_seconds",
		Help:    "Upstream request duration in seconds by service and endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15},
	}, []string{"service", "endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tapword_upstream_errors_total",
		Help: "Total upstream errors by service and class",
	}, []string{"service", "class"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tapword_upstream_retries_total",
		Help: "Total number of retry attempts by service and error class",
	}, []string{"service", "error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tapword_upstream_retry_backoff_seconds",
		Help:    "Backoff duration for retries by service and error class",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"service", "error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tapword_upstream_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by service and error class",
	}, []string{"service", "error_class"})
)
