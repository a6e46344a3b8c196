// Package orders creates orders and drives them through their lifecycle,
// keeping product stock in step with every change.
package orders

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/01moynul/wholesale-shop/internal/apperr"
	"github.com/01moynul/wholesale-shop/internal/database"
	"github.com/01moynul/wholesale-shop/internal/inventory"
	"github.com/01moynul/wholesale-shop/internal/logging"
	"github.com/01moynul/wholesale-shop/internal/models"
)

const tracerName = "github.com/01moynul/wholesale-shop/internal/orders"

// Manager owns the order lifecycle. Every stock mutation it makes happens in
// the same transaction as the order change that caused it.
type Manager struct {
	db        *sql.DB
	inventory *inventory.Store
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

func NewManager(db *sql.DB, inv *inventory.Store, logger *zap.Logger) *Manager {
	return &Manager{
		db:        db,
		inventory: inv,
		logger:    logger.Named("orders"),
		tracer:    otel.Tracer(tracerName),
		now:       database.Now,
	}
}

// StatusUpdate is the outcome of UpdateOrderStatus.
type StatusUpdate struct {
	Order         *models.Order
	Previous      models.OrderStatus
	Changed       bool
	StockRestored bool
}

// CreateOrder validates the request, then in one transaction snapshots each
// product's price, inserts the order and its items and deducts the stock.
// Nothing is written unless every item can be fulfilled.
func (m *Manager) CreateOrder(ctx context.Context, customerName string, items []models.OrderItemInput) (*models.Order, error) {
	ctx, span := m.tracer.Start(ctx, "orders.Create")
	defer span.End()

	name := strings.TrimSpace(customerName)
	if err := validateCreate(name, items); err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("order.item_count", len(items)))

	var orderID int64
	err := database.WithTx(ctx, m.db, func(tx *sql.Tx) error {
		lines, total, err := m.priceItems(ctx, tx, items)
		if err != nil {
			return err
		}

		now := m.now()
		orderID, err = insertOrder(ctx, tx, name, total, now)
		if err != nil {
			return err
		}

		for _, line := range lines {
			line.OrderID = orderID
			if err := insertItem(ctx, tx, line, now); err != nil {
				return err
			}
			if err := m.inventory.DecrementStock(ctx, tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.Int64("order.id", orderID))
	logging.WithTrace(ctx, m.logger).Info("order created",
		zap.Int64("order_id", orderID),
		zap.Int("items", len(items)),
	)

	return m.GetOrder(ctx, orderID)
}

// priceItems checks every requested line against current stock and snapshots
// its price. A product listed more than once is checked against what the
// earlier lines left over.
func (m *Manager) priceItems(ctx context.Context, tx *sql.Tx, items []models.OrderItemInput) ([]models.OrderItem, decimal.Decimal, error) {
	remaining := make(map[int64]int, len(items))
	lines := make([]models.OrderItem, 0, len(items))
	total := decimal.Zero

	for _, in := range items {
		p, err := m.inventory.LockProduct(ctx, tx, in.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}

		available, seen := remaining[p.ID]
		if !seen {
			available = p.Stock
		}
		if in.Quantity > available {
			return nil, decimal.Zero, inventory.NotEnoughStock(p, available, in.Quantity)
		}
		remaining[p.ID] = available - in.Quantity

		line := models.OrderItem{
			ProductID:    p.ID,
			Quantity:     in.Quantity,
			PricePerUnit: p.Price,
			TotalPrice:   p.Price.Mul(decimal.NewFromInt(int64(in.Quantity))),
		}
		total = total.Add(line.TotalPrice)
		lines = append(lines, line)
	}
	return lines, total, nil
}

func validateCreate(name string, items []models.OrderItemInput) error {
	if name == "" || len(items) == 0 {
		return apperr.Validation("Customer name and at least one item are required")
	}
	for _, it := range items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return apperr.Validation("Invalid item data. product_id and positive quantity required for all items.")
		}
	}
	return nil
}

// UpdateOrderStatus moves an order to status. Re-applying the current status
// succeeds without changes. Completed and Cancelled orders cannot move
// anywhere else. Cancelling an open order puts its quantities back in stock
// within the same transaction, and the status write only lands if the order
// is still in the status that was read, so stock is restored at most once.
func (m *Manager) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (*StatusUpdate, error) {
	ctx, span := m.tracer.Start(ctx, "orders.UpdateStatus",
		trace.WithAttributes(
			attribute.Int64("order.id", orderID),
			attribute.String("order.status.requested", status),
		),
	)
	defer span.End()

	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, fail(span, apperr.Validation("Invalid status. Must be one of: %s", statusList()))
	}

	var result StatusUpdate
	err := database.WithTx(ctx, m.db, func(tx *sql.Tx) error {
		order, err := getOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		result.Previous = order.Status

		if order.Status == next {
			return nil
		}
		if !order.Status.CanTransitionTo(next) {
			return apperr.InvalidTransition("Order is already %s and its status cannot be changed to %s.", order.Status, next)
		}

		if order.Status.RestoresStock(next) {
			items, err := orderItems(ctx, tx, orderID)
			if err != nil {
				return err
			}
			for _, it := range items {
				if err := m.inventory.IncrementStock(ctx, tx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
			result.StockRestored = true
		}

		swapped, err := swapStatus(ctx, tx, orderID, order.Status, next, m.now())
		if err != nil {
			return err
		}
		if !swapped {
			return apperr.Conflict("Order %d was changed by another request. Please retry.", orderID)
		}
		result.Changed = true
		return nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(
		attribute.String("order.status.previous", string(result.Previous)),
		attribute.Bool("order.stock_restored", result.StockRestored),
	)
	if result.Changed {
		logging.WithTrace(ctx, m.logger).Info("order status changed",
			zap.Int64("order_id", orderID),
			zap.String("from", string(result.Previous)),
			zap.String("to", string(next)),
			zap.Bool("stock_restored", result.StockRestored),
		)
	}

	result.Order, err = m.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOrder returns the order with its items.
func (m *Manager) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	order, err := getOrder(ctx, m.db, id)
	if err != nil {
		return nil, err
	}
	order.Items, err = orderItems(ctx, m.db, id)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders returns one page of orders, without items, and the total match count.
func (m *Manager) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error) {
	return listOrders(ctx, m.db, filter)
}

func statusList() string {
	names := make([]string, len(models.OrderStatuses))
	for i, s := range models.OrderStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// fail records err on span. Expected domain errors are noted but do not mark
// the span as failed.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	if apperr.KindOf(err) == apperr.KindInternal {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
