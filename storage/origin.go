package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/CreativeUnicorns/projectprefs"
)

// DefaultQuota is the per-origin byte budget browsers grant local storage.
const DefaultQuota int64 = 5 * 1024 * 1024

// OriginStore binds a Backend to one origin and implements projectprefs.Store.
type OriginStore struct {
	backend Backend
	origin  string
	quota   int64
}

// OriginOption configures an OriginStore.
type OriginOption func(*OriginStore)

// WithQuota sets the byte budget of the origin. Zero or a negative value disables the check.
func WithQuota(bytes int64) OriginOption {
	return func(s *OriginStore) {
		s.quota = bytes
	}
}

// ForOrigin returns a Store reading and writing the origin partition of backend.
// The quota defaults to DefaultQuota.
func ForOrigin(backend Backend, origin string, opts ...OriginOption) *OriginStore {
	s := &OriginStore{
		backend: backend,
		origin:  origin,
		quota:   DefaultQuota,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Origin returns the origin this store is bound to.
func (s *OriginStore) Origin() string {
	return s.origin
}

// GetItem returns the value stored under key, or projectprefs.ErrNotFound.
func (s *OriginStore) GetItem(ctx context.Context, key string) (string, error) {
	if err := s.check(key); err != nil {
		return "", err
	}
	return s.backend.Get(ctx, s.origin, key)
}

// SetItem stores value under key. It fails with projectprefs.ErrQuotaExceeded
// when the origin would grow past its quota; the previous value is then left in place.
// Quota-checked writes to one origin of one backend are serialized within the process.
func (s *OriginStore) SetItem(ctx context.Context, key, value string) error {
	if err := s.check(key); err != nil {
		return err
	}

	if s.quota > 0 {
		unlock := lockOrigin(s.backend, s.origin)
		defer unlock()

		used, err := s.backend.Usage(ctx, s.origin)
		if err != nil {
			return err
		}
		old, err := s.backend.Get(ctx, s.origin, key)
		switch {
		case err == nil:
			used -= itemSize(key, old)
		case !errors.Is(err, projectprefs.ErrNotFound):
			return err
		}
		if used+itemSize(key, value) > s.quota {
			return fmt.Errorf("storage: origin %q: %w (%d of %d bytes used)", s.origin, projectprefs.ErrQuotaExceeded, used, s.quota)
		}
	}

	return s.backend.Set(ctx, s.origin, key, value)
}

// RemoveItem deletes key. Removing an absent key succeeds.
func (s *OriginStore) RemoveItem(ctx context.Context, key string) error {
	if err := s.check(key); err != nil {
		return err
	}
	return s.backend.Delete(ctx, s.origin, key)
}

// Keys lists the keys stored for the origin.
func (s *OriginStore) Keys(ctx context.Context) ([]string, error) {
	return s.backend.Keys(ctx, s.origin)
}

// Clear removes every key of the origin.
func (s *OriginStore) Clear(ctx context.Context) error {
	keys, err := s.backend.Keys(ctx, s.origin)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.backend.Delete(ctx, s.origin, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *OriginStore) check(key string) error {
	if s.origin == "" || key == "" {
		return projectprefs.ErrInvalidInput
	}
	return nil
}

type originKey struct {
	backend Backend
	origin  string
}

type originLock struct {
	mu   sync.Mutex
	refs int
}

var (
	originLocksMu sync.Mutex
	originLocks   = make(map[originKey]*originLock)
)

// lockOrigin holds the write lock of origin on backend until the returned func is called.
// Entries are dropped once no writer references them.
func lockOrigin(backend Backend, origin string) func() {
	k := originKey{backend: backend, origin: origin}

	originLocksMu.Lock()
	l, ok := originLocks[k]
	if !ok {
		l = &originLock{}
		originLocks[k] = l
	}
	l.refs++
	originLocksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		originLocksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(originLocks, k)
		}
		originLocksMu.Unlock()
	}
}
