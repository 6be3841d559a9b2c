package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
)

// NATSTier is a durable tier backed by a NATS JetStream key-value bucket,
// for deployments that already run NATS instead of Redis. Storage cleanup
// of expired entries is the bucket's TTL concern; reads enforce the
// entry's own expiration either way.
//
// NATS KV keys cannot contain ':', so key segments are joined with '.'
// in the bucket and translated back on listing. Digests are hex and kinds
// are lowercase words, so the translation is lossless.
type NATSTier struct {
	kv    jetstream.KeyValue
	codec Codec
}

// NewNATSTier creates a tier over an existing key-value bucket.
func NewNATSTier(kv jetstream.KeyValue, codec Codec) *NATSTier {
	return &NATSTier{kv: kv, codec: codec}
}

// Get retrieves an entry from the bucket.
// Returns ErrCacheMiss if not found or expired; corrupt payloads are
// reported as ErrInvalidEntry and treated as a miss by the caller.
func (t *NATSTier) Get(ctx context.Context, key string) (*Entry, error) {
	kve, err := t.kv.Get(ctx, encodeNATSKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("nats kv get: %w", err)
	}

	entry, err := t.codec.Decode(kve.Value())
	if err != nil {
		CacheErrors.WithLabelValues("decode").Inc()
		return nil, err
	}

	if entry.IsExpired() {
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("nats").Inc()
	return entry, nil
}

// Set stores an entry in the bucket. Already-expired entries are not stored.
func (t *NATSTier) Set(ctx context.Context, key string, entry *Entry) error {
	if entry.TTL() <= 0 {
		return nil
	}

	data, err := t.codec.Encode(entry)
	if err != nil {
		CacheErrors.WithLabelValues("encode").Inc()
		return err
	}

	if _, err := t.kv.Put(ctx, encodeNATSKey(key), data); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("nats kv put: %w", err)
	}
	return nil
}

// Delete removes an entry. Absent keys are not an error.
func (t *NATSTier) Delete(ctx context.Context, key string) error {
	err := t.kv.Purge(ctx, encodeNATSKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("nats kv purge: %w", err)
	}
	return nil
}

// Keys returns all cache keys stored in the bucket.
func (t *NATSTier) Keys(ctx context.Context) ([]string, error) {
	lister, err := t.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		CacheErrors.WithLabelValues("keys").Inc()
		return nil, fmt.Errorf("nats kv list: %w", err)
	}

	var keys []string
	for key := range lister.Keys() {
		keys = append(keys, decodeNATSKey(key))
	}
	return keys, nil
}

// Clear removes all entries and returns the number removed.
func (t *NATSTier) Clear(ctx context.Context) (int, error) {
	keys, err := t.Keys(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, key := range keys {
		if err := t.Delete(ctx, key); err != nil {
			CacheErrors.WithLabelValues("clear").Inc()
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Name identifies this tier in logs and metrics.
func (t *NATSTier) Name() string {
	return "nats"
}

func encodeNATSKey(key string) string {
	return strings.ReplaceAll(key, ":", ".")
}

func decodeNATSKey(key string) string {
	return strings.ReplaceAll(key, ".", ":")
}
