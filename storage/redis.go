// storage/redis.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CreativeUnicorns/projectprefs"
)

// redisKeyPrefix namespaces the per-origin hashes.
const redisKeyPrefix = "localstorage:"

// redisClient is the subset of *redis.Client used by RedisBackend.
type redisClient interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd
	HKeys(ctx context.Context, key string) *redis.StringSliceCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Close() error
}

// RedisBackend implements the Backend interface with one Redis hash per origin.
type RedisBackend struct {
	client redisClient
}

// NewRedisBackend connects to Redis and verifies the connection with a PING.
func NewRedisBackend(addr string, password string, db int) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis: failed to connect: %w", err)
	}

	return &RedisBackend{
		client: client,
	}, nil
}

func redisHash(origin string) string {
	return redisKeyPrefix + origin
}

// Get retrieves the value stored under key for origin.
// It returns projectprefs.ErrNotFound if the key does not exist.
func (b *RedisBackend) Get(ctx context.Context, origin, key string) (string, error) {
	value, err := b.client.HGet(ctx, redisHash(origin), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", projectprefs.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis: failed to get item %q: %w", key, err)
	}
	return value, nil
}

// Set stores or updates the value under key for origin.
func (b *RedisBackend) Set(ctx context.Context, origin, key, value string) error {
	if err := b.client.HSet(ctx, redisHash(origin), key, value).Err(); err != nil {
		return fmt.Errorf("redis: failed to set item %q: %w", key, err)
	}
	return nil
}

// Delete removes key for origin. Deleting an absent key is not an error.
func (b *RedisBackend) Delete(ctx context.Context, origin, key string) error {
	if err := b.client.HDel(ctx, redisHash(origin), key).Err(); err != nil {
		return fmt.Errorf("redis: failed to delete item %q: %w", key, err)
	}
	return nil
}

// Keys returns the keys stored for origin in lexical order.
func (b *RedisBackend) Keys(ctx context.Context, origin string) ([]string, error) {
	keys, err := b.client.HKeys(ctx, redisHash(origin)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: failed to list keys: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Usage returns the bytes used by origin.
func (b *RedisBackend) Usage(ctx context.Context, origin string) (int64, error) {
	items, err := b.client.HGetAll(ctx, redisHash(origin)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: failed to compute usage: %w", err)
	}
	var used int64
	for k, v := range items {
		used += itemSize(k, v)
	}
	return used, nil
}

// Close closes the Redis client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
