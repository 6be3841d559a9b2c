package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tapword-app/content-client/pkg/logging"
)

// Producer computes a fresh value on a cache miss. The cache treats the
// value as opaque bytes and never stores anything when the producer fails.
type Producer func(ctx context.Context) ([]byte, error)

// Config holds store configuration.
type Config struct {
	// ReadTimeout bounds a single tier read so a slow durable backend
	// cannot stall callers; on timeout the read counts as a miss.
	ReadTimeout time.Duration

	// WriteTimeout bounds each best-effort background write.
	WriteTimeout time.Duration

	// WriteQueueSize is the capacity of the best-effort write queue.
	// Writes are dropped (and counted) when the queue is full.
	WriteQueueSize int
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:    1500 * time.Millisecond,
		WriteTimeout:   3 * time.Second,
		WriteQueueSize: 256,
	}
}

// Store memoizes expensive computations under string keys with absolute
// expiration. The storage strategy is fixed at construction: memory-only,
// durable, or the Tiered composite of both. Concurrent misses for the
// same key share a single producer call.
//
// Storage faults never reach callers: a failing or slow tier degrades to
// cache misses. Only producer errors propagate, and those are returned
// unchanged.
type Store struct {
	tier   Tier
	cfg    Config
	logger zerolog.Logger
	flight singleflight.Group

	mu     sync.Mutex
	closed bool
	writes chan writeTask
	wg     sync.WaitGroup
}

type writeTask struct {
	key   string
	value []byte
	ttl   time.Duration
}

// Stats summarizes stored entries for the cache admin surface.
type Stats struct {
	Total             int            `json:"total"`
	EntriesByCategory map[string]int `json:"entries_by_category"`
}

// NewStore creates a store over the given storage tier and starts the
// background write worker. Call Close to drain pending writes.
func NewStore(tier Tier, cfg Config) *Store {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultConfig().ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	if cfg.WriteQueueSize <= 0 {
		cfg.WriteQueueSize = DefaultConfig().WriteQueueSize
	}

	s := &Store{
		tier:   tier,
		cfg:    cfg,
		logger: logging.NewLogger("cache"),
		writes: make(chan writeTask, cfg.WriteQueueSize),
	}

	s.wg.Add(1)
	go s.writeLoop()

	return s
}

// NewMemoryStore creates a memory-only store. maxEntries bounds the
// memory tier (0 = unbounded).
func NewMemoryStore(maxEntries int, cfg Config) *Store {
	return NewStore(NewMemoryTier(maxEntries), cfg)
}

// Get returns the cached value for key, or ErrCacheMiss.
// Storage faults (unavailable durable tier, corrupt entry, timeout) are
// logged and reported as a miss; they are never propagated.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}

	rctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	entry, err := s.tier.Get(rctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, treating as miss")
		}
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	s.logger.Debug().Str("key", key).Dur("ttl", entry.TTL()).Msg("Cache hit")
	return entry.Data, nil
}

// Set stores value under key with the given time-to-live. The write goes
// through the tier synchronously; in durable mode the memory tier is
// authoritative and a durable failure does not fail the Set. Non-positive
// TTLs store nothing.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if ttl <= 0 {
		s.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("Skipping write with non-positive TTL")
		return nil
	}

	wctx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	if err := s.tier.Set(wctx, key, NewEntry(value, ttl)); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return err
	}
	return nil
}

// GetOrCompute returns the cached value for key, or computes it with
// producer on a miss. Concurrent callers for the same cold key await a
// single shared producer call. The producer runs under the caller's ctx;
// bound it with a deadline to limit the computation.
//
// On success the value is written back asynchronously (best-effort, not
// awaited). A producer error propagates to the caller unchanged and is
// never cached.
func (s *Store) GetOrCompute(ctx context.Context, key string, ttl time.Duration, producer Producer) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if producer == nil {
		return nil, errors.New("producer is required")
	}

	if data, err := s.Get(ctx, key); err == nil {
		return data, nil
	}

	v, err, shared := s.flight.Do(key, func() (any, error) {
		data, err := producer(ctx)
		if err != nil {
			return nil, err
		}
		s.enqueueWrite(key, data, ttl)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		CacheCoalesced.Inc()
		s.logger.Debug().Str("key", key).Msg("Lookup coalesced onto in-flight computation")
	}
	return v.([]byte), nil
}

// ClearAll removes every entry from the active tier(s) and returns the
// number removed. A durable-tier failure degrades to clearing what is
// reachable and is reported in the error.
func (s *Store) ClearAll(ctx context.Context) (int, error) {
	removed, err := s.tier.Clear(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Cache clear failed")
		return removed, err
	}
	s.logger.Info().Int("removed", removed).Msg("Cache cleared")
	return removed, nil
}

// Stats counts stored entries by key category. A durable-tier failure
// degrades to in-process counts rather than failing.
func (s *Store) Stats(ctx context.Context) Stats {
	rctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	keys, err := s.tier.Keys(rctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Cache key listing failed, stats degraded")
	}

	counts := make(map[string]int)
	for _, key := range keys {
		counts[Category(key)]++
	}
	for category, count := range counts {
		CacheEntries.WithLabelValues(category).Set(float64(count))
	}

	return Stats{Total: len(keys), EntriesByCategory: counts}
}

// Close stops accepting writes and drains the write queue.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.writes)
	s.mu.Unlock()

	s.wg.Wait()
}

// enqueueWrite hands a successful computation to the write worker without
// blocking the caller. A full queue drops the write; the drop is counted
// and logged so best-effort failures stay observable.
func (s *Store) enqueueWrite(key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		CacheWrites.WithLabelValues("dropped").Inc()
		return
	}

	select {
	case s.writes <- writeTask{key: key, value: value, ttl: ttl}:
		CacheWriteQueueDepth.Set(float64(len(s.writes)))
	default:
		CacheWrites.WithLabelValues("dropped").Inc()
		s.logger.Warn().Str("key", key).Msg("Write queue full, dropping cache write")
	}
}

// writeLoop performs the queued best-effort writes.
func (s *Store) writeLoop() {
	defer s.wg.Done()

	for task := range s.writes {
		CacheWriteQueueDepth.Set(float64(len(s.writes)))

		wctx, cancel := context.WithTimeout(context.Background(), s.cfg.WriteTimeout)
		err := s.tier.Set(wctx, task.key, NewEntry(task.value, task.ttl))
		cancel()

		if err != nil {
			CacheWrites.WithLabelValues("error").Inc()
			s.logger.Warn().Err(err).Str("key", task.key).Msg("Best-effort cache write failed")
			continue
		}
		CacheWrites.WithLabelValues("ok").Inc()
		s.logger.Debug().Str("key", task.key).Dur("ttl", task.ttl).Msg("Cache entry written")
	}
}
