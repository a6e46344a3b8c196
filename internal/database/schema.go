package database

import (
	"context"
	"database/sql"
	"fmt"
)

// sqliteSchema is applied statement by statement on every start; IF NOT EXISTS keeps it idempotent.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		email         TEXT     NOT NULL UNIQUE,
		password_hash TEXT     NOT NULL,
		created_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT     NOT NULL,
		sku         TEXT     NOT NULL UNIQUE,
		category    TEXT     NOT NULL DEFAULT '',
		description TEXT     NOT NULL DEFAULT '',
		price       REAL     NOT NULL CHECK (price >= 0),
		stock       INTEGER  NOT NULL DEFAULT 0 CHECK (stock >= 0),
		image_url   TEXT,
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_name TEXT     NOT NULL,
		order_date    DATETIME NOT NULL,
		total_amount  REAL     NOT NULL CHECK (total_amount >= 0),
		status        TEXT     NOT NULL DEFAULT 'Pending'
			CHECK (status IN ('Pending', 'Processing', 'Shipped', 'Completed', 'Cancelled')),
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status_date ON orders(status, order_date)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id       INTEGER  NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id     INTEGER  NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
		quantity       INTEGER  NOT NULL CHECK (quantity > 0),
		price_per_unit REAL     NOT NULL,
		total_price    REAL     NOT NULL,
		created_at     DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT       NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at    DATETIME     NOT NULL
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS products (
		id          BIGINT        NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(255)  NOT NULL,
		sku         VARCHAR(100)  NOT NULL UNIQUE,
		category    VARCHAR(100)  NOT NULL DEFAULT '',
		description TEXT          NOT NULL,
		price       DECIMAL(12,2) NOT NULL CHECK (price >= 0),
		stock       INT           NOT NULL DEFAULT 0 CHECK (stock >= 0),
		image_url   VARCHAR(1024) NULL,
		created_at  DATETIME      NOT NULL,
		updated_at  DATETIME      NOT NULL,
		INDEX idx_products_category (category)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS orders (
		id            BIGINT        NOT NULL AUTO_INCREMENT PRIMARY KEY,
		customer_name VARCHAR(255)  NOT NULL,
		order_date    DATETIME      NOT NULL,
		total_amount  DECIMAL(12,2) NOT NULL CHECK (total_amount >= 0),
		status        ENUM('Pending', 'Processing', 'Shipped', 'Completed', 'Cancelled') NOT NULL DEFAULT 'Pending',
		created_at    DATETIME      NOT NULL,
		updated_at    DATETIME      NOT NULL,
		INDEX idx_orders_status_date (status, order_date)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id             BIGINT        NOT NULL AUTO_INCREMENT PRIMARY KEY,
		order_id       BIGINT        NOT NULL,
		product_id     BIGINT        NOT NULL,
		quantity       INT           NOT NULL CHECK (quantity > 0),
		price_per_unit DECIMAL(12,2) NOT NULL,
		total_price    DECIMAL(12,2) NOT NULL,
		created_at     DATETIME      NOT NULL,
		CONSTRAINT fk_order_items_order FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
		CONSTRAINT fk_order_items_product FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT
	) ENGINE=InnoDB`,
}

// Migrate creates the tables and indexes for driver if they do not exist.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	schema := sqliteSchema
	if driver == DriverMySQL {
		schema = mysqlSchema
	}

	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("database: apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
