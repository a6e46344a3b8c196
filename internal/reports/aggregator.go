// Package reports computes read-only sales figures over Completed orders.
package reports

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/01moynul/wholesale-shop/internal/models"
)

const DefaultTopLimit = 5

// Aggregator runs the report queries. Day boundaries are computed in loc.
type Aggregator struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

func NewAggregator(db *sql.DB) *Aggregator {
	return &Aggregator{db: db, loc: time.Local, now: time.Now}
}

// Range resolves the report window from the query. A known period replaces
// the explicit dates with the current day, month or year. Dates that do not
// parse leave that side of the range open.
func (a *Aggregator) Range(q models.ReportQuery) models.DateRange {
	var r models.DateRange
	if start, ok := a.parseDay(q.StartDate); ok {
		r.Start = &start
	}
	if end, ok := a.parseDay(q.EndDate); ok {
		next := end.AddDate(0, 0, 1)
		r.End = &next
	}

	now := a.now().In(a.loc)
	y, m, d := now.Date()
	var start, end time.Time
	switch strings.ToLower(strings.TrimSpace(q.Period)) {
	case "daily":
		start = time.Date(y, m, d, 0, 0, 0, 0, a.loc)
		end = start.AddDate(0, 0, 1)
	case "monthly":
		start = time.Date(y, m, 1, 0, 0, 0, 0, a.loc)
		end = start.AddDate(0, 1, 0)
	case "yearly":
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, a.loc)
		end = start.AddDate(1, 0, 0)
	default:
		return r
	}
	return models.DateRange{Start: &start, End: &end}
}

// parseDay accepts YYYY-MM-DD or an RFC 3339 timestamp and returns local
// midnight of that calendar day.
func (a *Aggregator) parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", s, a.loc)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, false
		}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, a.loc), true
}

// ParseLimit returns the positive integer in s, or DefaultTopLimit.
func ParseLimit(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return DefaultTopLimit
	}
	return n
}

// ParseCriteria maps s to a ranking; anything but "quantity" ranks by revenue.
func ParseCriteria(s string) models.SalesCriteria {
	if strings.EqualFold(strings.TrimSpace(s), string(models.CriteriaQuantity)) {
		return models.CriteriaQuantity
	}
	return models.CriteriaRevenue
}

// completedIn builds the WHERE clause shared by every report. prefix
// qualifies the orders columns, e.g. "o.".
func completedIn(r models.DateRange, prefix string) (string, []any) {
	where := ` WHERE ` + prefix + `status = ?`
	args := []any{models.StatusCompleted}
	if r.Start != nil {
		where += ` AND ` + prefix + `order_date >= ?`
		args = append(args, r.Start.UTC())
	}
	if r.End != nil {
		where += ` AND ` + prefix + `order_date < ?`
		args = append(args, r.End.UTC())
	}
	return where, args
}

// Summary counts Completed orders in r with their revenue and average value,
// and the number of low-stock products regardless of r.
func (a *Aggregator) Summary(ctx context.Context, r models.DateRange) (*models.SummaryReport, error) {
	where, args := completedIn(r, "")

	var (
		report  models.SummaryReport
		revenue decimal.NullDecimal
		average decimal.NullDecimal
	)
	err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(id), SUM(total_amount), AVG(total_amount) FROM orders`+where, args...,
	).Scan(&report.SalesSummary.TotalOrders, &revenue, &average)
	if err != nil {
		return nil, fmt.Errorf("reports: sales summary: %w", err)
	}
	report.SalesSummary.TotalRevenue = money(revenue)
	report.SalesSummary.AverageOrderValue = money(average)

	err = a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE stock < ?`, models.LowStockThreshold,
	).Scan(&report.LowStockItemsCount)
	if err != nil {
		return nil, fmt.Errorf("reports: count low stock products: %w", err)
	}
	return &report, nil
}

// SalesByProduct totals quantity and revenue per product over Completed
// orders in r, highest revenue first.
func (a *Aggregator) SalesByProduct(ctx context.Context, r models.DateRange) ([]models.ProductSales, error) {
	return a.productSales(ctx, r, models.CriteriaRevenue, 0)
}

// TopSelling is SalesByProduct ranked by criteria and cut to limit rows.
func (a *Aggregator) TopSelling(ctx context.Context, r models.DateRange, criteria models.SalesCriteria, limit int) ([]models.ProductSales, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	return a.productSales(ctx, r, criteria, limit)
}

func (a *Aggregator) productSales(ctx context.Context, r models.DateRange, criteria models.SalesCriteria, limit int) ([]models.ProductSales, error) {
	where, args := completedIn(r, "o.")

	orderBy := "total_revenue DESC, total_quantity DESC, p.id"
	if criteria == models.CriteriaQuantity {
		orderBy = "total_quantity DESC, total_revenue DESC, p.id"
	}

	query := `
		SELECT p.id, p.name, p.sku,
		       SUM(oi.quantity) AS total_quantity,
		       SUM(oi.total_price) AS total_revenue
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		JOIN orders o ON o.id = oi.order_id` + where + `
		GROUP BY p.id, p.name, p.sku
		ORDER BY ` + orderBy
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reports: product sales: %w", err)
	}
	defer rows.Close()

	sales := []models.ProductSales{}
	for rows.Next() {
		var (
			ps      models.ProductSales
			revenue decimal.NullDecimal
		)
		if err := rows.Scan(&ps.ProductID, &ps.ProductName, &ps.ProductSKU, &ps.TotalQuantitySold, &revenue); err != nil {
			return nil, fmt.Errorf("reports: scan product sales: %w", err)
		}
		ps.TotalRevenue = money(revenue)
		sales = append(sales, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: iterate product sales: %w", err)
	}
	return sales, nil
}

// money rounds an aggregate to cents; NULL (no rows) is zero.
func money(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal.Round(2)
}
