// Package databasetest opens throwaway SQLite stores for package tests.
package databasetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/01moynul/wholesale-shop/internal/database"
)

// Open returns a migrated SQLite store in t's temp dir, closed on cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	db, err := database.OpenDB(context.Background(), database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "shop.db"),
	}, zap.NewNop())
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}
