// storage/storage.go
package storage

import (
	"context"
)

// Backend is a multi-origin key-value store. Each origin is an isolated
// partition, the way a browser scopes local storage to a page origin.
//
// Get returns projectprefs.ErrNotFound when the key is absent.
// Delete on an absent key is not an error.
// Usage reports the bytes taken by the keys and values of an origin.
type Backend interface {
	Get(ctx context.Context, origin, key string) (string, error)
	Set(ctx context.Context, origin, key, value string) error
	Delete(ctx context.Context, origin, key string) error
	Keys(ctx context.Context, origin string) ([]string, error)
	Usage(ctx context.Context, origin string) (int64, error)
	Close() error
}

// itemSize is the quota cost of one stored item.
func itemSize(key, value string) int64 {
	return int64(len(key) + len(value))
}
