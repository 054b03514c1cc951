// Package projectprefs defines interfaces for storage, translation, and logging used by the preference facade.
package projectprefs

import (
	"context"
)

// Store is the origin-scoped key-value capability the preferences are written to.
// GetItem returns ErrNotFound when the key is absent. RemoveItem on an absent key is not an error.
// SetItem may fail with ErrQuotaExceeded when the origin has no room left.
type Store interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Translator resolves a display label for a key within a message namespace.
type Translator interface {
	Translate(namespace, key string) string
}

// Logger defines the methods required for logging within the preferences system.
// The args should be alternating key-value pairs, similar to slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
