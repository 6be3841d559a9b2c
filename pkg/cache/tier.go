package cache

import (
	"context"
	"errors"
)

// Sentinel errors returned by cache operations.
var (
	// ErrCacheMiss indicates the key was not found or the entry is expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates a stored payload failed to deserialize.
	ErrInvalidEntry = errors.New("invalid cache entry")

	// ErrEmptyKey indicates an operation was called with an empty key.
	ErrEmptyKey = errors.New("empty cache key")
)

// Tier is a storage strategy backing a Store. A Store is constructed with
// exactly one Tier: MemoryTier for memory-only operation, a durable tier
// (RedisTier, NATSTier), or a Tiered composite of both.
//
// Get returns ErrCacheMiss for absent keys and for entries past their
// expiration; expired entries are not deleted by Get (cleanup happens on
// overwrite, explicit clear, or the backend's own TTL reclamation).
// Any other error is a storage fault; the Store recovers those as misses.
type Tier interface {
	// Get returns the entry stored under key.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set stores an entry under key, overwriting any previous entry.
	Set(ctx context.Context, key string, entry *Entry) error

	// Delete removes the entry under key. Absent keys are not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all stored keys, including expired ones.
	Keys(ctx context.Context) ([]string, error)

	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	// Name identifies the tier in logs and metrics.
	Name() string
}
