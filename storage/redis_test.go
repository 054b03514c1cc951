package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/projectprefs"
)

// MockRedisClient is a mock implementation of the redis hash commands.
type MockRedisClient struct {
	mu       sync.Mutex
	hashes   map[string]map[string]string
	forceErr error
	closed   bool
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		hashes: make(map[string]map[string]string),
	}
}

func (m *MockRedisClient) HGet(ctx context.Context, key, field string) *redis.StringCmd {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forceErr != nil {
		return redis.NewStringResult("", m.forceErr)
	}
	val, exists := m.hashes[key][field]
	if !exists {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (m *MockRedisClient) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forceErr != nil {
		return redis.NewIntResult(0, m.forceErr)
	}
	if _, ok := m.hashes[key]; !ok {
		m.hashes[key] = make(map[string]string)
	}
	var added int64
	for i := 0; i+1 < len(values); i += 2 {
		field := values[i].(string)
		if _, ok := m.hashes[key][field]; !ok {
			added++
		}
		m.hashes[key][field] = values[i+1].(string)
	}
	return redis.NewIntResult(added, nil)
}

func (m *MockRedisClient) HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forceErr != nil {
		return redis.NewIntResult(0, m.forceErr)
	}
	var removed int64
	for _, f := range fields {
		if _, ok := m.hashes[key][f]; ok {
			delete(m.hashes[key], f)
			removed++
		}
	}
	if len(m.hashes[key]) == 0 {
		delete(m.hashes, key)
	}
	return redis.NewIntResult(removed, nil)
}

func (m *MockRedisClient) HKeys(ctx context.Context, key string) *redis.StringSliceCmd {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forceErr != nil {
		return redis.NewStringSliceResult(nil, m.forceErr)
	}
	keys := []string{}
	for k := range m.hashes[key] {
		keys = append(keys, k)
	}
	return redis.NewStringSliceResult(keys, nil)
}

func (m *MockRedisClient) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forceErr != nil {
		return redis.NewMapStringStringResult(nil, m.forceErr)
	}
	out := make(map[string]string, len(m.hashes[key]))
	for k, v := range m.hashes[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (m *MockRedisClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func TestRedisBackend(t *testing.T) {
	testBackendConformance(t, &RedisBackend{client: NewMockRedisClient()})
}

func TestRedisBackend_HashPerOrigin(t *testing.T) {
	ctx := context.Background()
	client := NewMockRedisClient()
	backend := &RedisBackend{client: client}

	require.NoError(t, backend.Set(ctx, "https://a.example", "sonarqube.projects.view", "leak"))
	require.NoError(t, backend.Set(ctx, "https://b.example", "sonarqube.projects.view", "overall"))

	assert.Equal(t, "leak", client.hashes["localstorage:https://a.example"]["sonarqube.projects.view"])
	assert.Equal(t, "overall", client.hashes["localstorage:https://b.example"]["sonarqube.projects.view"])
}

func TestRedisBackend_Errors(t *testing.T) {
	ctx := context.Background()
	client := NewMockRedisClient()
	client.forceErr = errors.New("READONLY You can't write against a read only replica")
	backend := &RedisBackend{client: client}

	_, err := backend.Get(ctx, "o", "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, projectprefs.ErrNotFound), "transport errors are not misses")
	assert.Contains(t, err.Error(), "redis: failed to get item")

	assert.ErrorContains(t, backend.Set(ctx, "o", "k", "v"), "redis: failed to set item")
	assert.ErrorContains(t, backend.Delete(ctx, "o", "k"), "redis: failed to delete item")
	_, err = backend.Keys(ctx, "o")
	assert.ErrorContains(t, err, "redis: failed to list keys")
	_, err = backend.Usage(ctx, "o")
	assert.ErrorContains(t, err, "redis: failed to compute usage")
}

func TestRedisBackend_Close(t *testing.T) {
	client := NewMockRedisClient()
	backend := &RedisBackend{client: client}
	require.NoError(t, backend.Close())
	assert.True(t, client.closed)
}
