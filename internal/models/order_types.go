package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "Pending"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusCompleted  OrderStatus = "Completed"
	StatusCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists every valid status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusCompleted,
	StatusCancelled,
}

// ParseOrderStatus matches s exactly against the known statuses.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, status := range OrderStatuses {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transition is allowed out of s.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether an order in s may move to next.
// Re-setting the current status is always allowed and is a no-op.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	return !s.IsTerminal()
}

// RestoresStock reports whether moving from s to next must put the ordered
// quantities back into inventory.
func (s OrderStatus) RestoresStock(next OrderStatus) bool {
	return next == StatusCancelled && !s.IsTerminal()
}

// Order is the model for the 'orders' table.
// TotalAmount is fixed at creation; only Status changes afterwards.
type Order struct {
	ID           int64           `json:"id" db:"id"`
	CustomerName string          `json:"customer_name" db:"customer_name"`
	OrderDate    time.Time       `json:"order_date" db:"order_date"`
	TotalAmount  decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status       OrderStatus     `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`

	// Joins (not in the orders table)
	Items []OrderItem `json:"items,omitempty" db:"-"`
}

// OrderItem is the model for the 'order_items' table.
// PricePerUnit is the product price at the time of the order.
type OrderItem struct {
	ID           int64           `json:"id" db:"id"`
	OrderID      int64           `json:"order_id" db:"order_id"`
	ProductID    int64           `json:"product_id" db:"product_id"`
	Quantity     int             `json:"quantity" db:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit" db:"price_per_unit"`
	TotalPrice   decimal.Decimal `json:"total_price" db:"total_price"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`

	// Flattened product fields for display
	ProductName string `json:"product_name" db:"-"`
	ProductSKU  string `json:"product_sku" db:"-"`
}

// OrderItemInput is one requested line of a new order.
type OrderItemInput struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderInput is the body of POST /orders.
type CreateOrderInput struct {
	CustomerName string           `json:"customer_name" binding:"required"`
	Items        []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderStatusInput is the body of PUT /orders/:id/status.
type UpdateOrderStatusInput struct {
	Status string `json:"status" binding:"required,order_status"`
}

// OrderFilter drives the order listing query.
type OrderFilter struct {
	Status       string
	CustomerName string
	SortBy       string
	SortOrder    string
	Page         int
	Limit        int
}
