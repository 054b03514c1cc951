// Package storage provides a PostgreSQL-based implementation of the Backend interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/CreativeUnicorns/projectprefs"
)

// sqlOpenFunc is a package-level variable that can be overridden for testing.
var sqlOpenFunc = sql.Open

const (
	createTableSQL = `
		CREATE TABLE IF NOT EXISTS local_storage (
			origin TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (origin, key)
		);
	`

	upsertSQL = `
		INSERT INTO local_storage (origin, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (origin, key)
		DO UPDATE SET value = $3, updated_at = $4
	`

	selectSQL = `
		SELECT value
		FROM local_storage
		WHERE origin = $1 AND key = $2
	`

	selectKeysSQL = `
		SELECT key
		FROM local_storage
		WHERE origin = $1
		ORDER BY key
	`

	usageSQL = `
		SELECT COALESCE(SUM(octet_length(key) + octet_length(value)), 0)
		FROM local_storage
		WHERE origin = $1
	`

	deleteSQL = `
		DELETE FROM local_storage
		WHERE origin = $1 AND key = $2
	`
)

// PostgresBackend implements the Backend interface using PostgreSQL.
// Several servers can share one database, each origin staying isolated.
type PostgresBackend struct {
	db *sql.DB
}

// NewPostgresBackend initializes a new PostgresBackend instance.
// It connects to the PostgreSQL database using the provided connection string and runs migrations.
func NewPostgresBackend(connString string) (*PostgresBackend, error) {
	db, err := sqlOpenFunc("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}

	backend := &PostgresBackend{db: db}
	if err := backend.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to run migrations: %w", err)
	}

	return backend, nil
}

// migrate runs the necessary database migrations.
func (b *PostgresBackend) migrate() error {
	if _, err := b.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("postgres: failed to execute create table statement: %w", err)
	}
	return nil
}

// Get retrieves the value stored under key for origin.
// It returns projectprefs.ErrNotFound if the key does not exist.
func (b *PostgresBackend) Get(ctx context.Context, origin, key string) (string, error) {
	var value string
	err := b.db.QueryRowContext(ctx, selectSQL, origin, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", projectprefs.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("postgres: failed to get item for origin '%s', key '%s': %w", origin, key, err)
	}
	return value, nil
}

// Set stores or updates the value under key for origin.
func (b *PostgresBackend) Set(ctx context.Context, origin, key, value string) error {
	if _, err := b.db.ExecContext(ctx, upsertSQL, origin, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("postgres: failed to execute upsert for origin '%s', key '%s': %w", origin, key, err)
	}
	return nil
}

// Delete removes key for origin. Deleting an absent key is not an error.
func (b *PostgresBackend) Delete(ctx context.Context, origin, key string) error {
	if _, err := b.db.ExecContext(ctx, deleteSQL, origin, key); err != nil {
		return fmt.Errorf("postgres: failed to execute delete for origin '%s', key '%s': %w", origin, key, err)
	}
	return nil
}

// Keys returns the keys stored for origin in lexical order.
func (b *PostgresBackend) Keys(ctx context.Context, origin string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, selectKeysSQL, origin)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query keys for origin '%s': %w", origin, err)
	}
	keys, err := scanKeys(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return keys, nil
}

// Usage returns the bytes used by origin.
func (b *PostgresBackend) Usage(ctx context.Context, origin string) (int64, error) {
	var used int64
	if err := b.db.QueryRowContext(ctx, usageSQL, origin).Scan(&used); err != nil {
		return 0, fmt.Errorf("postgres: failed to compute usage for origin '%s': %w", origin, err)
	}
	return used, nil
}

// Close closes the PostgreSQL database connection.
func (b *PostgresBackend) Close() error {
	return b.db.Close()
}
