package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// redisKeyPrefix namespaces cache entries so a shared Redis database can
// hold other application state (quota tracking, sessions).
const redisKeyPrefix = "tapword:cache:"

// cleanupTimeout bounds the best-effort deletion of corrupt entries.
const cleanupTimeout = 2 * time.Second

// RedisTier is a durable tier backed by Redis. Entries survive process
// restarts. Each write also sets a server-side TTL so Redis reclaims
// expired entries on its own; reads still enforce the entry's own
// expiration, so a stale server clock cannot resurrect stale data.
type RedisTier struct {
	client *redis.Client
	codec  Codec
	prefix string
}

// NewRedisTier creates a Redis-backed tier. codec serializes entries;
// pass JSONCodec{} for plain JSON or a ZstdCodec for compressed storage.
func NewRedisTier(client *redis.Client, codec Codec) *RedisTier {
	return &RedisTier{
		client: client,
		codec:  codec,
		prefix: redisKeyPrefix,
	}
}

// Get retrieves an entry from Redis.
// Returns ErrCacheMiss if not found or expired. A payload that fails to
// decode is reported as ErrInvalidEntry and scheduled for best-effort
// deletion; the caller treats it as a miss.
func (t *RedisTier) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := t.client.Get(ctx, t.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	entry, err := t.codec.Decode(data)
	if err != nil {
		CacheErrors.WithLabelValues("decode").Inc()
		t.cleanupCorrupt(key)
		return nil, err
	}

	if entry.IsExpired() {
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("redis").Inc()
	return entry, nil
}

// Set stores an entry in Redis with a server-side TTL matching the
// entry's remaining lifetime. Entries that are already expired are not
// stored.
func (t *RedisTier) Set(ctx context.Context, key string, entry *Entry) error {
	data, err := t.codec.Encode(entry)
	if err != nil {
		CacheErrors.WithLabelValues("encode").Inc()
		return err
	}

	ttl := entry.TTL()
	if ttl <= 0 {
		return nil
	}

	if err := t.client.Set(ctx, t.prefix+key, data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes an entry. Absent keys are not an error.
func (t *RedisTier) Delete(ctx context.Context, key string) error {
	if err := t.client.Del(ctx, t.prefix+key).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Keys returns all cache keys stored in Redis, with the namespace prefix
// stripped.
func (t *RedisTier) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := t.client.Scan(ctx, 0, t.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(t.prefix):])
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues("keys").Inc()
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}

// Clear removes all namespaced entries and returns the number removed.
func (t *RedisTier) Clear(ctx context.Context) (int, error) {
	keys, err := t.Keys(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for start := 0; start < len(keys); start += 500 {
		end := start + 500
		if end > len(keys) {
			end = len(keys)
		}
		batch := make([]string, 0, end-start)
		for _, key := range keys[start:end] {
			batch = append(batch, t.prefix+key)
		}
		n, err := t.client.Del(ctx, batch...).Result()
		removed += int(n)
		if err != nil {
			CacheErrors.WithLabelValues("clear").Inc()
			return removed, fmt.Errorf("redis clear: %w", err)
		}
	}
	return removed, nil
}

// Name identifies this tier in logs and metrics.
func (t *RedisTier) Name() string {
	return "redis"
}

// cleanupCorrupt deletes a corrupt entry in the background so the next
// write is not blocked by stale bytes. Failures only surface in metrics.
func (t *RedisTier) cleanupCorrupt(key string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if err := t.client.Del(ctx, t.prefix+key).Err(); err != nil {
			CacheErrors.WithLabelValues("cleanup").Inc()
			log.Debug().Err(err).Str("key", key).Msg("Corrupt entry cleanup failed")
		}
	}()
}
