package cache

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Tiered combines a memory tier with a durable tier. Reads check memory
// first, then the durable tier, backfilling memory on a durable hit so
// subsequent reads stay in-process. Writes land in memory synchronously
// (the authoritative tier for the current process) and in the durable
// tier best-effort: a durable failure never fails the write.
type Tiered struct {
	memory  Tier
	durable Tier
}

// NewTiered creates the composite used in durable mode.
func NewTiered(memory, durable Tier) *Tiered {
	return &Tiered{memory: memory, durable: durable}
}

// Get checks the memory tier, then the durable tier with memory backfill.
func (t *Tiered) Get(ctx context.Context, key string) (*Entry, error) {
	entry, err := t.memory.Get(ctx, key)
	if err == nil {
		return entry, nil
	}

	entry, err = t.durable.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	// Promote so the next read is served in-process. Best-effort.
	_ = t.memory.Set(ctx, key, entry)
	return entry, nil
}

// Set writes to memory, then best-effort to the durable tier.
func (t *Tiered) Set(ctx context.Context, key string, entry *Entry) error {
	if err := t.memory.Set(ctx, key, entry); err != nil {
		return err
	}

	if err := t.durable.Set(ctx, key, entry); err != nil {
		CacheWrites.WithLabelValues("durable_error").Inc()
		log.Warn().Err(err).Str("key", key).Str("tier", t.durable.Name()).
			Msg("Durable cache write failed, entry kept in memory")
	}
	return nil
}

// Delete removes the entry from both tiers.
func (t *Tiered) Delete(ctx context.Context, key string) error {
	if err := t.durable.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Durable cache delete failed")
	}
	return t.memory.Delete(ctx, key)
}

// Keys returns the union of keys across both tiers.
func (t *Tiered) Keys(ctx context.Context) ([]string, error) {
	memKeys, err := t.memory.Keys(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(memKeys))
	keys := make([]string, 0, len(memKeys))
	for _, key := range memKeys {
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	durKeys, err := t.durable.Keys(ctx)
	if err != nil {
		// Degrade to in-process knowledge rather than failing the caller.
		log.Warn().Err(err).Str("tier", t.durable.Name()).
			Msg("Durable key listing failed, reporting memory keys only")
		return keys, nil
	}
	for _, key := range durKeys {
		if _, ok := seen[key]; !ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Clear empties both tiers, returning how many distinct entries were
// removed from the tier that held the most.
func (t *Tiered) Clear(ctx context.Context) (int, error) {
	memRemoved, err := t.memory.Clear(ctx)
	if err != nil {
		return 0, err
	}

	durRemoved, err := t.durable.Clear(ctx)
	if err != nil {
		CacheErrors.WithLabelValues("clear").Inc()
		log.Warn().Err(err).Str("tier", t.durable.Name()).
			Msg("Durable cache clear failed, memory tier cleared")
		return memRemoved, nil
	}

	if durRemoved > memRemoved {
		return durRemoved, nil
	}
	return memRemoved, nil
}

// Name identifies this tier in logs and metrics.
func (t *Tiered) Name() string {
	return "tiered"
}
