package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/wholesale-shop/internal/database"
	"github.com/01moynul/wholesale-shop/internal/database/databasetest"
)

func insertProduct(ctx context.Context, q database.Querier, sku string) error {
	now := database.Now()
	_, err := q.ExecContext(ctx,
		`INSERT INTO products (name, sku, price, stock, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"Widget", sku, 10, 5, now, now,
	)
	return err
}

func countProducts(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&n))
	return n
}

func TestWithTxCommits(t *testing.T) {
	db := databasetest.Open(t)
	ctx := context.Background()

	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		return insertProduct(ctx, tx, "W-1")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countProducts(t, db))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := databasetest.Open(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		require.NoError(t, insertProduct(ctx, tx, "W-1"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countProducts(t, db))
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	db := databasetest.Open(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = database.WithTx(ctx, db, func(tx *sql.Tx) error {
			require.NoError(t, insertProduct(ctx, tx, "W-1"))
			panic("boom")
		})
	})
	assert.Equal(t, 0, countProducts(t, db))
}

func TestConstraintErrors(t *testing.T) {
	db := databasetest.Open(t)
	ctx := context.Background()

	require.NoError(t, insertProduct(ctx, db, "W-1"))

	err := insertProduct(ctx, db, "W-1")
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
	assert.False(t, database.IsForeignKeyViolation(err))

	now := database.Now()
	_, err = db.ExecContext(ctx,
		`INSERT INTO order_items (order_id, product_id, quantity, price_per_unit, total_price, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		999, 1, 1, 10, 10, now,
	)
	require.Error(t, err)
	assert.True(t, database.IsForeignKeyViolation(err))
	assert.False(t, database.IsUniqueViolation(err))
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := databasetest.Open(t)

	require.NoError(t, database.Migrate(context.Background(), db, database.DriverSQLite))
}

func TestTimestampsRoundTrip(t *testing.T) {
	db := databasetest.Open(t)
	ctx := context.Background()

	require.NoError(t, insertProduct(ctx, db, "W-1"))

	var created time.Time
	require.NoError(t, db.QueryRowContext(ctx, `SELECT created_at FROM products WHERE sku = ?`, "W-1").Scan(&created))
	assert.WithinDuration(t, time.Now(), created, time.Minute)
}

func TestForUpdate(t *testing.T) {
	assert.Empty(t, database.ForUpdate(databasetest.Open(t)))

	// sql.Open does not dial, so no server is needed to inspect the driver
	mysqlDB, err := sql.Open(database.DriverMySQL, "shop:secret@tcp(127.0.0.1:3306)/shop")
	require.NoError(t, err)
	t.Cleanup(func() { _ = mysqlDB.Close() })
	assert.Equal(t, " FOR UPDATE", database.ForUpdate(mysqlDB))
}
