// Package metrics provides the centralized Prometheus registry reference
// for the content client. All metrics are defined in their respective
// packages (cache, upstream, quota) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the content client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - tapword_cache_hits_total{tier} (Counter): Cache hits by storage tier (memory, redis, nats)
//   - tapword_cache_misses_total (Counter): Cache misses
//   - tapword_cache_errors_total{operation} (Counter): Cache operation errors
//   - tapword_cache_writes_total{result} (Counter): Best-effort write outcomes (ok, error, dropped, durable_error)
//   - tapword_cache_write_queue_depth (Gauge): Pending best-effort writes
//   - tapword_cache_coalesced_total (Counter): Lookups served by a shared in-flight producer
//   - tapword_cache_evictions_total (Counter): Memory tier LRU evictions
//   - tapword_cache_entries{category} (Gauge): Stored entries by key category (audio, ai)
//
// Upstream Metrics (pkg/upstream):
//   - tapword_upstream_requests_total{service, endpoint, status} (Counter): Requests by service and status
//   - tapword_upstream_request_duration_seconds{service, endpoint} (Histogram): Request duration
//   - tapword_upstream_errors_total{service, class} (Counter): Errors by class (client, server, rate_limit, network)
//   - tapword_upstream_retries_total{service, error_class} (Counter): Retry attempts
//   - tapword_upstream_retry_backoff_seconds{service, error_class} (Histogram): Backoff durations
//   - tapword_upstream_retry_exhausted_total{service, error_class} (Counter): Requests that exhausted retries
//
// Quota Metrics (pkg/quota):
//   - tapword_quota_remaining_requests{service} (Gauge): Budget remaining in the current window
//   - tapword_quota_blocks_total{service} (Counter): Requests blocked by the quota gate
//   - tapword_quota_throttles_total{service} (Counter): Requests throttled by the quota gate
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(tapword_cache_hits_total[5m])) /
//   (sum(rate(tapword_cache_hits_total[5m])) + sum(rate(tapword_cache_misses_total[5m])))
//
//   # Dropped best-effort writes (should stay at zero)
//   rate(tapword_cache_writes_total{result="dropped"}[5m])
//
//   # Upstream budget status
//   tapword_quota_remaining_requests < 20
//
//   # P95 Upstream Latency
//   histogram_quantile(0.95, rate(tapword_upstream_request_duration_seconds_bucket[5m]))
