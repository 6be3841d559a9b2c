// Package cache memoizes expensive AI-content and speech-synthesis
// results with absolute expiration over pluggable storage tiers.
//
// A Store is constructed with exactly one storage strategy:
//
// - MemoryTier: in-process only, entries lost on restart
// - RedisTier / NATSTier: durable, entries survive restarts
// - Tiered: memory in front of a durable tier, with promotion on hit
//
// The primitive operation is GetOrCompute: serve a valid cached value,
// or run the caller's producer once and cache the result. Concurrent
// misses for the same key share a single producer call. Storage faults
// never reach callers; they degrade to cache misses. Producer failures
// propagate unchanged and are never cached.
//
// # Basic Usage
//
//	// Memory-only store
//	store := cache.NewMemoryStore(0, cache.DefaultConfig())
//	defer store.Close()
//
//	key := cache.SpeechKey("good morning", "en-US-AvaNeural", "+0%").String()
//
//	audio, err := store.GetOrCompute(ctx, key, 7*24*time.Hour,
//		func(ctx context.Context) ([]byte, error) {
//			return synthesize(ctx, "good morning")
//		})
//
// # Durable Mode
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	codec, _ := cache.NewZstdCodec(cache.JSONCodec{})
//	tier := cache.NewTiered(
//		cache.NewMemoryTier(10000),
//		cache.NewRedisTier(redisClient, codec),
//	)
//	store := cache.NewStore(tier, cache.DefaultConfig())
//
// # Keys
//
// Keys carry a category ("audio", "ai") and a SHA-256 digest of the
// canonicalized request identity, so distinct requests cannot collide.
// Callers normalize inputs (trimming, voice/speed defaults) before
// derivation.
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - tapword_cache_hits_total{tier} - Cache hits by tier
//   - tapword_cache_misses_total - Cache misses
//   - tapword_cache_errors_total{operation} - Storage faults
//   - tapword_cache_writes_total{result} - Best-effort write outcomes
//   - tapword_cache_write_queue_depth - Pending background writes
//   - tapword_cache_coalesced_total - Lookups served by a shared producer
//   - tapword_cache_evictions_total - Memory tier LRU evictions
//   - tapword_cache_entries{category} - Stored entries per category
package cache
