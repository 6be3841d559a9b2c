package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by storage tier (memory, redis, nats)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapword_cache_hits_total",
			Help: "Total number of cache hits by storage tier",
		},
		[]string{"tier"},
	)

	// CacheMisses tracks overall cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tapword_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapword_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "decode", "encode", "delete", "keys", "clear", "cleanup"
	)

	// CacheWrites tracks best-effort write outcomes
	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapword_cache_writes_total",
			Help: "Total number of best-effort cache writes by outcome",
		},
		[]string{"result"}, // "ok", "error", "dropped", "durable_error"
	)

	// CacheWriteQueueDepth tracks pending entries in the write queue
	CacheWriteQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tapword_cache_write_queue_depth",
			Help: "Current number of pending best-effort cache writes",
		},
	)

	// CacheCoalesced tracks callers served by another caller's in-flight producer
	CacheCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tapword_cache_coalesced_total",
			Help: "Total number of lookups coalesced onto an in-flight computation",
		},
	)

	// CacheEvictions tracks memory-tier LRU evictions
	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tapword_cache_evictions_total",
			Help: "Total number of memory tier LRU evictions",
		},
	)

	// CacheEntries tracks stored entries by key category
	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tapword_cache_entries",
			Help: "Stored cache entries by key category, as of the last stats collection",
		},
		[]string{"category"}, // "audio", "ai"
	)
)
