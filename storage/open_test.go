package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/projectprefs/config"
)

func TestOpen(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		b, err := Open(config.Storage{Type: config.StorageMemory})
		require.NoError(t, err)
		assert.IsType(t, &MemoryBackend{}, b)
		assert.NoError(t, b.Close())
	})

	t.Run("sqlite", func(t *testing.T) {
		b, err := Open(config.Storage{Type: config.StorageSQLite, SQLitePath: filepath.Join(t.TempDir(), "open.db")})
		require.NoError(t, err)
		assert.IsType(t, &SQLiteBackend{}, b)
		assert.NoError(t, b.Close())
	})

	t.Run("sqlite_failure_returns_nil_backend", func(t *testing.T) {
		b, err := Open(config.Storage{Type: config.StorageSQLite, SQLitePath: filepath.Join(t.TempDir(), "no", "such", "dir.db")})
		assert.Error(t, err)
		assert.Nil(t, b)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Open(config.Storage{Type: "etcd"})
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}
