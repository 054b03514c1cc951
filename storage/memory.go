package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/CreativeUnicorns/projectprefs"
)

// MemoryBackend implements the Backend interface using an in-memory map.
// This is useful for testing or for a server whose preferences may be lost on restart.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]map[string]string // origin -> key -> value
}

// NewMemoryBackend creates a new instance of MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		items: make(map[string]map[string]string),
	}
}

// Get retrieves the value stored under key for origin.
// It returns projectprefs.ErrNotFound if the key does not exist.
func (b *MemoryBackend) Get(_ context.Context, origin, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	value, ok := b.items[origin][key]
	if !ok {
		return "", projectprefs.ErrNotFound
	}
	return value, nil
}

// Set stores value under key for origin, replacing any previous value.
func (b *MemoryBackend) Set(_ context.Context, origin, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.items[origin]; !ok {
		b.items[origin] = make(map[string]string)
	}
	b.items[origin][key] = value
	return nil
}

// Delete removes key for origin. It returns nil if the key does not exist.
func (b *MemoryBackend) Delete(_ context.Context, origin, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	originItems, ok := b.items[origin]
	if !ok {
		return nil
	}

	delete(originItems, key)
	// If the origin has no more items, remove the origin's map entry
	if len(originItems) == 0 {
		delete(b.items, origin)
	}
	return nil
}

// Keys returns the keys stored for origin in lexical order.
func (b *MemoryBackend) Keys(_ context.Context, origin string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.items[origin]))
	for k := range b.items[origin] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Usage returns the bytes used by origin.
func (b *MemoryBackend) Usage(_ context.Context, origin string) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var used int64
	for k, v := range b.items[origin] {
		used += itemSize(k, v)
	}
	return used, nil
}

// Close is a no-op for MemoryBackend as there are no external resources to release.
func (b *MemoryBackend) Close() error {
	return nil
}
