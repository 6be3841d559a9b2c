package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTiered_DurableHitBackfillsMemory(t *testing.T) {
	memory := NewMemoryTier(0)
	durable := NewMemoryTier(0) // stands in for Redis/NATS
	tiered := NewTiered(memory, durable)
	ctx := context.Background()

	durable.Set(ctx, "k", NewEntry([]byte("persisted"), time.Minute))

	got, err := tiered.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(got.Data) != "persisted" {
		t.Errorf("Data = %q", got.Data)
	}

	// The entry is now served from memory.
	if _, err := memory.Get(ctx, "k"); err != nil {
		t.Errorf("Memory tier not backfilled: %v", err)
	}
}

func TestTiered_SetWritesBothTiers(t *testing.T) {
	memory := NewMemoryTier(0)
	durable := NewMemoryTier(0)
	tiered := NewTiered(memory, durable)
	ctx := context.Background()

	if err := tiered.Set(ctx, "k", NewEntry([]byte("v"), time.Minute)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	if _, err := memory.Get(ctx, "k"); err != nil {
		t.Errorf("Memory tier missing the entry: %v", err)
	}
	if _, err := durable.Get(ctx, "k"); err != nil {
		t.Errorf("Durable tier missing the entry: %v", err)
	}
}

func TestTiered_DurableFailureDoesNotFailSet(t *testing.T) {
	memory := NewMemoryTier(0)
	tiered := NewTiered(memory, faultyTier{})
	ctx := context.Background()

	if err := tiered.Set(ctx, "k", NewEntry([]byte("v"), time.Minute)); err != nil {
		t.Fatalf("Set() with a failing durable tier = %v, want nil", err)
	}

	// Memory stays authoritative for the current process.
	if _, err := memory.Get(ctx, "k"); err != nil {
		t.Errorf("Memory tier missing the entry: %v", err)
	}
}

func TestTiered_DurableFailureDegradesReads(t *testing.T) {
	memory := NewMemoryTier(0)
	tiered := NewTiered(memory, faultyTier{})
	ctx := context.Background()

	if _, err := tiered.Get(ctx, "absent"); err == nil {
		t.Error("Get() on a cold key over a failing durable tier should report the fault")
	}

	// Keys degrades to memory-only listing instead of failing.
	memory.Set(ctx, "k", NewEntry([]byte("v"), time.Minute))
	keys, err := tiered.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "k" {
		t.Errorf("Keys() = %v, want the memory keys", keys)
	}

	// Clear degrades to clearing memory.
	removed, err := tiered.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Clear() removed %d, want 1", removed)
	}
}

func TestTiered_KeysUnion(t *testing.T) {
	memory := NewMemoryTier(0)
	durable := NewMemoryTier(0)
	tiered := NewTiered(memory, durable)
	ctx := context.Background()

	memory.Set(ctx, "both", NewEntry([]byte("v"), time.Minute))
	durable.Set(ctx, "both", NewEntry([]byte("v"), time.Minute))
	durable.Set(ctx, "durable-only", NewEntry([]byte("v"), time.Minute))

	keys, err := tiered.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("Keys() = %v, want the deduplicated union", keys)
	}
}

func TestTiered_Delete(t *testing.T) {
	memory := NewMemoryTier(0)
	durable := NewMemoryTier(0)
	tiered := NewTiered(memory, durable)
	ctx := context.Background()

	tiered.Set(ctx, "k", NewEntry([]byte("v"), time.Minute))
	if err := tiered.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, err := tiered.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after delete = %v, want ErrCacheMiss", err)
	}
}
