package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryTier_SetAndGet(t *testing.T) {
	tier := NewMemoryTier(0)
	ctx := context.Background()

	entry := NewEntry([]byte("value"), time.Minute)
	if err := tier.Set(ctx, "k", entry); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, err := tier.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(got.Data) != "value" {
		t.Errorf("Data = %q, want %q", got.Data, "value")
	}
}

func TestMemoryTier_GetMiss(t *testing.T) {
	tier := NewMemoryTier(0)

	if _, err := tier.Get(context.Background(), "absent"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryTier_ExpiredEntryIsMissButStaysStored(t *testing.T) {
	tier := NewMemoryTier(0)
	ctx := context.Background()

	tier.Set(ctx, "k", NewEntry([]byte("v"), -time.Second))

	if _, err := tier.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() = %v, want ErrCacheMiss for the expired entry", err)
	}

	// Reads do not delete; the key still shows up in listings.
	keys, err := tier.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() failed: %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("Keys() = %v, want the expired key still listed", keys)
	}
}

func TestMemoryTier_Overwrite(t *testing.T) {
	tier := NewMemoryTier(0)
	ctx := context.Background()

	tier.Set(ctx, "k", NewEntry([]byte("old"), time.Minute))
	tier.Set(ctx, "k", NewEntry([]byte("new"), time.Minute))

	got, err := tier.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(got.Data) != "new" {
		t.Errorf("Data = %q, want the overwritten value", got.Data)
	}

	keys, _ := tier.Keys(ctx)
	if len(keys) != 1 {
		t.Errorf("Keys() = %v, want a single entry", keys)
	}
}

func TestMemoryTier_DeleteNonexistent(t *testing.T) {
	tier := NewMemoryTier(0)

	if err := tier.Delete(context.Background(), "absent"); err != nil {
		t.Errorf("Delete() of an absent key = %v, want nil", err)
	}
}

func TestMemoryTier_LRUEviction(t *testing.T) {
	tier := NewMemoryTier(3)
	ctx := context.Background()

	tier.Set(ctx, "a", NewEntry([]byte("1"), time.Minute))
	tier.Set(ctx, "b", NewEntry([]byte("2"), time.Minute))
	tier.Set(ctx, "c", NewEntry([]byte("3"), time.Minute))

	// Touch "a" so "b" is the least recently used.
	if _, err := tier.Get(ctx, "a"); err != nil {
		t.Fatalf("Get(a) failed: %v", err)
	}

	tier.Set(ctx, "d", NewEntry([]byte("4"), time.Minute))

	if _, err := tier.Get(ctx, "b"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(b) = %v, want eviction of the least recently used entry", err)
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, err := tier.Get(ctx, key); err != nil {
			t.Errorf("Get(%s) = %v, want a hit", key, err)
		}
	}
}

func TestMemoryTier_Clear(t *testing.T) {
	tier := NewMemoryTier(0)
	ctx := context.Background()

	tier.Set(ctx, "a", NewEntry([]byte("1"), time.Minute))
	tier.Set(ctx, "b", NewEntry([]byte("2"), time.Minute))

	removed, err := tier.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Clear() removed %d, want 2", removed)
	}

	keys, _ := tier.Keys(ctx)
	if len(keys) != 0 {
		t.Errorf("Keys() after clear = %v, want empty", keys)
	}

	// Evictions must not fire against the reset list.
	tier.Set(ctx, "c", NewEntry([]byte("3"), time.Minute))
	if _, err := tier.Get(ctx, "c"); err != nil {
		t.Errorf("Get() after clear = %v, want a hit", err)
	}
}
