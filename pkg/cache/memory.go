package cache

import (
	"container/list"
	"context"
	"sync"
)

// MemoryTier is an in-process tier. Entries live for the lifetime of the
// process and are lost on restart. Reads do not remove expired entries;
// an optional entry cap bounds growth with least-recently-used eviction.
type MemoryTier struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
}

type memoryItem struct {
	key   string
	entry *Entry
}

// NewMemoryTier creates a memory tier. maxEntries bounds the number of
// stored entries (0 = unbounded); the least recently used entry is
// evicted when the cap is exceeded.
func NewMemoryTier(maxEntries int) *MemoryTier {
	return &MemoryTier{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

// Get returns the entry for key, or ErrCacheMiss if absent or expired.
// Expired entries stay stored until overwritten, evicted, or cleared.
func (t *MemoryTier) Get(ctx context.Context, key string) (*Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	elem, ok := t.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}

	entry := elem.Value.(*memoryItem).entry
	if entry.IsExpired() {
		return nil, ErrCacheMiss
	}

	t.order.MoveToFront(elem)
	CacheHits.WithLabelValues("memory").Inc()
	return entry, nil
}

// Set stores entry under key, overwriting any previous entry.
func (t *MemoryTier) Set(ctx context.Context, key string, entry *Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if elem, ok := t.entries[key]; ok {
		elem.Value.(*memoryItem).entry = entry
		t.order.MoveToFront(elem)
		return nil
	}

	t.entries[key] = t.order.PushFront(&memoryItem{key: key, entry: entry})

	if t.maxEntries > 0 && t.order.Len() > t.maxEntries {
		t.evictOldest()
	}
	return nil
}

// Delete removes the entry under key if present.
func (t *MemoryTier) Delete(ctx context.Context, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if elem, ok := t.entries[key]; ok {
		t.order.Remove(elem)
		delete(t.entries, key)
	}
	return nil
}

// Keys returns all stored keys, including expired ones.
func (t *MemoryTier) Keys(ctx context.Context) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	keys := make([]string, 0, len(t.entries))
	for key := range t.entries {
		keys = append(keys, key)
	}
	return keys, nil
}

// Clear removes all entries and returns the number removed.
func (t *MemoryTier) Clear(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := len(t.entries)
	t.entries = make(map[string]*list.Element)
	t.order.Init()
	return removed, nil
}

// Name identifies this tier in logs and metrics.
func (t *MemoryTier) Name() string {
	return "memory"
}

// evictOldest removes the least recently used entry. Caller holds the lock.
func (t *MemoryTier) evictOldest() {
	elem := t.order.Back()
	if elem == nil {
		return
	}
	t.order.Remove(elem)
	delete(t.entries, elem.Value.(*memoryItem).key)
	CacheEvictions.Inc()
}
