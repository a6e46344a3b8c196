package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	// Register the pure-Go SQLite driver under the name "sqlite".
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config selects the backing store.
type Config struct {
	Driver     string
	DSN        string // MySQL only
	SQLitePath string // SQLite only
}

// Querier is implemented by both *sql.DB and *sql.Tx, so store helpers
// can run in or out of a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// OpenDB opens the configured store, verifies the connection and applies the schema.
// The caller owns the returned handle and must Close it.
func OpenDB(ctx context.Context, cfg Config, logger *zap.Logger) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case DriverSQLite, "":
		db, err = openSQLite(cfg.SQLitePath)
	case DriverMySQL:
		db, err = openMySQL(cfg.DSN)
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	if err := Migrate(ctx, db, cfg.Driver); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("Database connection pool established", zap.String("driver", driverName(cfg.Driver)))
	return db, nil
}

// openSQLite opens (or creates) the SQLite file at path.
// foreign_keys(on) enforces the order_items relationships; _time_format=sqlite
// writes timestamps in a sortable text layout so date-range filters compare correctly.
func openSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database: sqlite path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("database: create %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(on)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite",
		path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open sqlite %q: %w", path, err)
	}

	// One connection serializes writers, which is all the isolation the
	// order transactions need on SQLite.
	db.SetMaxOpenConns(1)
	return db, nil
}

// openMySQL opens a MySQL pool. parseTime is forced on so DATETIME columns
// scan into time.Time, and all times are exchanged in UTC.
func openMySQL(dsn string) (*sql.DB, error) {
	mysqlCfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("database: parse mysql dsn: %w", err)
	}
	mysqlCfg.ParseTime = true
	mysqlCfg.Loc = time.UTC

	db, err := sql.Open("mysql", mysqlCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("database: open mysql: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func driverName(driver string) string {
	if driver == "" {
		return DriverSQLite
	}
	return driver
}

// Now returns the current time in the form stored in timestamp columns.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
