// Package storage provides a SQLite-based implementation of the Backend interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/CreativeUnicorns/projectprefs"
)

const (
	sqliteCreateTableSQL = `
		CREATE TABLE IF NOT EXISTS local_storage (
			origin TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (origin, key)
		);
	`

	sqliteUpsertSQL = `
		INSERT INTO local_storage (origin, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(origin, key)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	sqliteSelectSQL = `
		SELECT value
		FROM local_storage
		WHERE origin = ? AND key = ?
	`

	sqliteSelectKeysSQL = `
		SELECT key
		FROM local_storage
		WHERE origin = ?
		ORDER BY key
	`

	sqliteUsageSQL = `
		SELECT COALESCE(SUM(LENGTH(CAST(key AS BLOB)) + LENGTH(CAST(value AS BLOB))), 0)
		FROM local_storage
		WHERE origin = ?
	`

	sqliteDeleteSQL = `
		DELETE FROM local_storage
		WHERE origin = ? AND key = ?
	`
)

// SQLiteBackend implements the Backend interface using SQLite.
// It is the natural backend for a single machine's persistent preferences.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend initializes a new SQLiteBackend instance.
// It connects to the SQLite database at the specified path and runs migrations.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping database: %w", err)
	}

	backend := &SQLiteBackend{db: db}
	if err := backend.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to run migrations: %w", err)
	}

	return backend, nil
}

// migrate runs the necessary database migrations.
func (b *SQLiteBackend) migrate() error {
	_, err := b.db.Exec(sqliteCreateTableSQL)
	return err
}

// Get retrieves the value stored under key for origin.
// It returns projectprefs.ErrNotFound if the key does not exist.
func (b *SQLiteBackend) Get(ctx context.Context, origin, key string) (string, error) {
	var value string
	err := b.db.QueryRowContext(ctx, sqliteSelectSQL, origin, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", projectprefs.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: failed to get item %q: %w", key, err)
	}
	return value, nil
}

// Set stores or updates the value under key for origin.
func (b *SQLiteBackend) Set(ctx context.Context, origin, key, value string) error {
	if _, err := b.db.ExecContext(ctx, sqliteUpsertSQL, origin, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("sqlite: failed to set item %q: %w", key, err)
	}
	return nil
}

// Delete removes key for origin. Deleting an absent key is not an error.
func (b *SQLiteBackend) Delete(ctx context.Context, origin, key string) error {
	if _, err := b.db.ExecContext(ctx, sqliteDeleteSQL, origin, key); err != nil {
		return fmt.Errorf("sqlite: failed to delete item %q: %w", key, err)
	}
	return nil
}

// Keys returns the keys stored for origin in lexical order.
func (b *SQLiteBackend) Keys(ctx context.Context, origin string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, sqliteSelectKeysSQL, origin)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query keys: %w", err)
	}
	keys, err := scanKeys(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return keys, nil
}

// Usage returns the bytes used by origin.
func (b *SQLiteBackend) Usage(ctx context.Context, origin string) (int64, error) {
	var used int64
	if err := b.db.QueryRowContext(ctx, sqliteUsageSQL, origin).Scan(&used); err != nil {
		return 0, fmt.Errorf("sqlite: failed to compute usage: %w", err)
	}
	return used, nil
}

// Close closes the SQLite database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// scanKeys reads a single-column result set of keys and closes rows.
func scanKeys(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keys: %w", err)
	}
	return keys, nil
}
