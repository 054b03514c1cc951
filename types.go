// Package projectprefs defines the configuration types of the preference facade.
package projectprefs

import "context"

// Config holds the internal configuration for a Preferences instance.
// It is populated by applying functional Options when New is called.
type Config struct {
	// store is the origin-scoped key-value capability.
	store Store
	// logger receives Debug lines for discarded write failures.
	logger Logger
}

// Option defines the signature for a functional option that configures a Preferences instance.
type Option func(*Config)

// WithStore sets the Store the preferences are read from and written to.
// Without it every read reports an unset preference and every write is dropped.
func WithStore(s Store) Option {
	return func(c *Config) {
		c.store = s
	}
}

// WithLogger sets the Logger implementation.
// If not set, a default logger writing JSON to os.Stderr at info level is used.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// unavailableStore backs a Preferences built without WithStore.
type unavailableStore struct{}

func (unavailableStore) GetItem(_ context.Context, _ string) (string, error) {
	return "", ErrStorageUnavailable
}

func (unavailableStore) SetItem(_ context.Context, _, _ string) error {
	return ErrStorageUnavailable
}

func (unavailableStore) RemoveItem(_ context.Context, _ string) error {
	return ErrStorageUnavailable
}
