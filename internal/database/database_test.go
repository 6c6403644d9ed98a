package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T, path string) *Config {
	t.Helper()
	return &Config{Driver: DriverSQLite, SQLitePath: path}
}

func TestOpen_CreatesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		db, err := Open(openTestDB(t, path))
		require.NoError(t, err, "iteration %d", i)
		db.Close()
	}

	db, err := Open(openTestDB(t, path))
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"tasks", "orders", "order_line_items", "sync_runs"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %q missing", table)
	}

	var fk int
	require.NoError(t, db.Get(&fk, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, fk)
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := Open(&Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	db, err := Open(openTestDB(t, filepath.Join(t.TempDir(), "tx.db")))
	require.NoError(t, err)
	defer db.Close()

	tr := NewTransactor(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err = tr.WithinTx(ctx, func(ctx context.Context) error {
		assert.True(t, InTx(ctx))
		_, err := Conn(ctx, db).ExecContext(ctx,
			`INSERT INTO sync_runs (id, status, started_at, finished_at) VALUES ('r1', 'success', '2025-01-01', '2025-01-01')`)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.Get(&count, "SELECT count(*) FROM sync_runs"))
	assert.Equal(t, 0, count)
}

func TestWithinTx_NestedJoinsOuter(t *testing.T) {
	db, err := Open(openTestDB(t, filepath.Join(t.TempDir(), "nested.db")))
	require.NoError(t, err)
	defer db.Close()

	tr := NewTransactor(db)
	ctx := context.Background()

	err = tr.WithinTx(ctx, func(ctx context.Context) error {
		return tr.WithinTx(ctx, func(ctx context.Context) error {
			_, err := Conn(ctx, db).ExecContext(ctx,
				`INSERT INTO sync_runs (id, status, started_at, finished_at) VALUES ('r1', 'success', '2025-01-01', '2025-01-01')`)
			return err
		})
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Get(&count, "SELECT count(*) FROM sync_runs"))
	assert.Equal(t, 1, count)
	assert.False(t, InTx(ctx))
}
