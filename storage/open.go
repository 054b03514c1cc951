package storage

import (
	"fmt"

	"github.com/CreativeUnicorns/projectprefs/config"
)

// Open builds the Backend selected by cfg.Type.
func Open(cfg config.Storage) (Backend, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Type {
	case config.StorageMemory, "":
		return NewMemoryBackend(), nil
	case config.StorageSQLite:
		var b *SQLiteBackend
		b, err = NewSQLiteBackend(cfg.SQLitePath)
		backend = b
	case config.StoragePostgres:
		var b *PostgresBackend
		b, err = NewPostgresBackend(cfg.PostgresDSN)
		backend = b
	case config.StorageRedis:
		var b *RedisBackend
		b, err = NewRedisBackend(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		backend = b
	default:
		return nil, fmt.Errorf("%w: unknown storage type %q", config.ErrInvalidConfig, cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return backend, nil
}
