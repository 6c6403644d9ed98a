// Package testutil holds helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/fekuna/omnipos-fulfillment-service/internal/database"
	"github.com/jmoiron/sqlx"
)

// NewDB opens a fresh SQLite store in the test's temp dir and closes it on cleanup.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := database.Open(&database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "fulfillment.db"),
	})
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
