package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/01moynul/wholesale-shop/internal/apperr"
	"github.com/01moynul/wholesale-shop/internal/database"
	"github.com/01moynul/wholesale-shop/internal/models"
)

const orderColumns = `id, customer_name, order_date, total_amount, status, created_at, updated_at`

var orderSortColumns = map[string]string{
	"order_date":    "order_date",
	"total_amount":  "total_amount",
	"customer_name": "customer_name",
	"status":        "status",
	"created_at":    "created_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID,
		&o.CustomerName,
		&o.OrderDate,
		&o.TotalAmount,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func getOrder(ctx context.Context, q database.Querier, id int64) (*models.Order, error) {
	row := q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, fmt.Errorf("orders: get order %d: %w", id, err)
	}
	return o, nil
}

// orderItems returns the items of an order joined with their product's name and SKU.
func orderItems(ctx context.Context, q database.Querier, orderID int64) ([]models.OrderItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price_per_unit, oi.total_price, oi.created_at,
		       p.name, p.sku
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("orders: list items of order %d: %w", orderID, err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(
			&it.ID,
			&it.OrderID,
			&it.ProductID,
			&it.Quantity,
			&it.PricePerUnit,
			&it.TotalPrice,
			&it.CreatedAt,
			&it.ProductName,
			&it.ProductSKU,
		); err != nil {
			return nil, fmt.Errorf("orders: scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders: iterate items: %w", err)
	}
	return items, nil
}

func insertOrder(ctx context.Context, q database.Querier, customerName string, total decimal.Decimal, now time.Time) (int64, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO orders (customer_name, order_date, total_amount, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		customerName, now, total, models.StatusPending, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("orders: insert order: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("orders: get new order id: %w", err)
	}
	return id, nil
}

func insertItem(ctx context.Context, q database.Querier, it models.OrderItem, now time.Time) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO order_items (order_id, product_id, quantity, price_per_unit, total_price, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		it.OrderID, it.ProductID, it.Quantity, it.PricePerUnit, it.TotalPrice, now,
	)
	if err != nil {
		return fmt.Errorf("orders: insert item for product %d: %w", it.ProductID, err)
	}
	return nil
}

// swapStatus moves the order from one status to another and reports whether
// the row was still in status from.
func swapStatus(ctx context.Context, q database.Querier, id int64, from, to models.OrderStatus, now time.Time) (bool, error) {
	res, err := q.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, now, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("orders: update status of order %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("orders: update status of order %d: %w", id, err)
	}
	return n == 1, nil
}

func listOrders(ctx context.Context, db *sql.DB, filter models.OrderFilter) ([]models.Order, int, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.CustomerName != "" {
		where = append(where, "customer_name LIKE ?")
		args = append(args, "%"+filter.CustomerName+"%")
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("orders: count orders: %w", err)
	}

	orderBy := "order_date DESC, id DESC"
	if col, ok := orderSortColumns[filter.SortBy]; ok {
		dir := database.SortDirection(filter.SortOrder, "DESC")
		orderBy = fmt.Sprintf("%s %s, id %s", col, dir, dir)
	}

	_, limit, offset := database.NormalizePage(filter.Page, filter.Limit)
	query := `SELECT ` + orderColumns + ` FROM orders` + whereClause +
		` ORDER BY ` + orderBy + ` LIMIT ? OFFSET ?`

	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("orders: list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("orders: scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("orders: iterate orders: %w", err)
	}
	return orders, total, nil
}
