package projectprefs

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockStore implements the Store interface for testing.
type MockStore struct {
	mu       sync.RWMutex
	data     map[string]string
	quota    int // bytes of keys+values; 0 means unlimited
	forceErr error
	setCalls int
	rmCalls  int
	getCalls int
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]string),
	}
}

func (m *MockStore) GetItem(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++

	if m.forceErr != nil {
		return "", m.forceErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MockStore) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++

	if m.forceErr != nil {
		return m.forceErr
	}
	if m.quota > 0 {
		used := 0
		for k, v := range m.data {
			if k != key {
				used += len(k) + len(v)
			}
		}
		if used+len(key)+len(value) > m.quota {
			return fmt.Errorf("mockstore: %w", ErrQuotaExceeded)
		}
	}
	m.data[key] = value
	return nil
}

func (m *MockStore) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rmCalls++

	if m.forceErr != nil {
		return m.forceErr
	}
	delete(m.data, key)
	return nil
}

func (m *MockStore) raw(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

// MockLogger implements the Logger interface for testing.
type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *MockLogger) record(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("%s: %s %v", level, msg, args))
}

func (l *MockLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args...) }
func (l *MockLogger) Info(msg string, args ...any)  { l.record("INFO", msg, args...) }
func (l *MockLogger) Warn(msg string, args ...any)  { l.record("WARN", msg, args...) }
func (l *MockLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args...) }

func (l *MockLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

// MockTranslator implements the Translator interface for testing.
type MockTranslator struct {
	messages map[string]string
	calls    []string
}

func (tr *MockTranslator) Translate(namespace, key string) string {
	full := namespace + "." + key
	tr.calls = append(tr.calls, full)
	if msg, ok := tr.messages[full]; ok {
		return msg
	}
	return strings.ToUpper(full)
}
