package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/projectprefs"
)

const testOrigin = "https://sonar.example.com"

func newMockPostgres(t *testing.T) (*PostgresBackend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &PostgresBackend{db: db}, mock
}

func TestNewPostgresBackend(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPing()
		mock.ExpectExec(regexp.QuoteMeta(createTableSQL)).WillReturnResult(sqlmock.NewResult(0, 0))

		originalSqlOpen := sqlOpenFunc
		sqlOpenFunc = func(driverName, dataSourceName string) (*sql.DB, error) {
			assert.Equal(t, "postgres", driverName)
			return db, nil
		}
		defer func() { sqlOpenFunc = originalSqlOpen }()

		backend, err := NewPostgresBackend("dummy_conn_string")
		assert.NoError(t, err)
		assert.NotNil(t, backend)
		assert.NoError(t, mock.ExpectationsWereMet(), "sqlmock expectations not met")
	})

	t.Run("sql open error", func(t *testing.T) {
		expectedErr := errors.New("failed to open database")
		originalSqlOpen := sqlOpenFunc
		sqlOpenFunc = func(driverName, dataSourceName string) (*sql.DB, error) {
			return nil, expectedErr
		}
		defer func() { sqlOpenFunc = originalSqlOpen }()

		_, err := NewPostgresBackend("dummy_conn_string")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, expectedErr), "Expected sql open error")
	})

	t.Run("ping error", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPing().WillReturnError(errors.New("ping failed"))

		originalSqlOpen := sqlOpenFunc
		sqlOpenFunc = func(driverName, dataSourceName string) (*sql.DB, error) {
			return db, nil
		}
		defer func() { sqlOpenFunc = originalSqlOpen }()

		_, err = NewPostgresBackend("dummy_conn_string")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "postgres: failed to ping database")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("migration error", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPing()
		mock.ExpectExec(regexp.QuoteMeta(createTableSQL)).WillReturnError(errors.New("permission denied"))

		originalSqlOpen := sqlOpenFunc
		sqlOpenFunc = func(driverName, dataSourceName string) (*sql.DB, error) {
			return db, nil
		}
		defer func() { sqlOpenFunc = originalSqlOpen }()

		_, err = NewPostgresBackend("dummy_conn_string")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "postgres: failed to run migrations")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresBackend_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		backend, mock := newMockPostgres(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectSQL)).
			WithArgs(testOrigin, "sonarqube.projects.view").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("leak"))

		v, err := backend.Get(ctx, testOrigin, "sonarqube.projects.view")
		require.NoError(t, err)
		assert.Equal(t, "leak", v)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		backend, mock := newMockPostgres(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectSQL)).
			WithArgs(testOrigin, "missing").
			WillReturnRows(sqlmock.NewRows([]string{"value"}))

		_, err := backend.Get(ctx, testOrigin, "missing")
		assert.True(t, errors.Is(err, projectprefs.ErrNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		backend, mock := newMockPostgres(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectSQL)).
			WithArgs(testOrigin, "k").
			WillReturnError(errors.New("connection reset"))

		_, err := backend.Get(ctx, testOrigin, "k")
		require.Error(t, err)
		assert.False(t, errors.Is(err, projectprefs.ErrNotFound))
		assert.Contains(t, err.Error(), "postgres: failed to get item")
	})
}

func TestPostgresBackend_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert", func(t *testing.T) {
		backend, mock := newMockPostgres(t)
		mock.ExpectExec(regexp.QuoteMeta(upsertSQL)).
			WithArgs(testOrigin, "sonarqube.projects.sort", "-coverage", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, backend.Set(ctx, testOrigin, "sonarqube.projects.sort", "-coverage"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error", func(t *testing.T) {
		backend, mock := newMockPostgres(t)
		mock.ExpectExec(regexp.QuoteMeta(upsertSQL)).
			WillReturnError(errors.New("disk full"))

		err := backend.Set(ctx, testOrigin, "k", "v")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "postgres: failed to execute upsert")
	})
}

func TestPostgresBackend_Delete(t *testing.T) {
	ctx := context.Background()
	backend, mock := newMockPostgres(t)

	mock.ExpectExec(regexp.QuoteMeta(deleteSQL)).
		WithArgs(testOrigin, "sonarqube.projects.view").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, backend.Delete(ctx, testOrigin, "sonarqube.projects.view"), "deleting an absent key is not an error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_KeysAndUsage(t *testing.T) {
	ctx := context.Background()
	backend, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectKeysSQL)).
		WithArgs(testOrigin).
		WillReturnRows(sqlmock.NewRows([]string{"key"}).
			AddRow("sonarqube.projects.sort").
			AddRow("sonarqube.projects.view"))
	mock.ExpectQuery(regexp.QuoteMeta(usageSQL)).
		WithArgs(testOrigin).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(58)))

	keys, err := backend.Keys(ctx, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, []string{"sonarqube.projects.sort", "sonarqube.projects.view"}, keys)

	used, err := backend.Usage(ctx, testOrigin)
	require.NoError(t, err)
	assert.Equal(t, int64(58), used)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackend_KeysScanError(t *testing.T) {
	ctx := context.Background()
	backend, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectKeysSQL)).
		WithArgs(testOrigin).
		WillReturnRows(sqlmock.NewRows([]string{"key"}).
			AddRow("a").
			RowError(0, errors.New("row broken")))

	_, err := backend.Keys(ctx, testOrigin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres:")
}
