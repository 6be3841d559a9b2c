package cache

import (
	"time"
)

// Entry represents a cached payload with its validity window.
// Data is opaque to the cache; callers serialize their own values.
type Entry struct {
	// Data is the cached payload
	Data []byte `json:"data"`

	// CreatedAt is when the entry was written
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is the absolute expiration time (CreatedAt + TTL at write)
	ExpiresAt time.Time `json:"expires_at"`
}

// NewEntry creates an entry expiring ttl from now.
func NewEntry(data []byte, ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the entry has passed its expiration time.
// Expired entries are treated as a miss on every read path, in every tier.
func (e *Entry) IsExpired() bool {
	return !time.Now().Before(e.ExpiresAt)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.ExpiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}
