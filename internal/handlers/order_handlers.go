package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/wholesale-shop/internal/database"
	"github.com/01moynul/wholesale-shop/internal/models"
	"github.com/01moynul/wholesale-shop/internal/orders"
)

type orderListQuery struct {
	Status       string `form:"status"`
	CustomerName string `form:"customer_name"`
	SortBy       string `form:"sortBy"`
	SortOrder    string `form:"sortOrder"`
	Page         string `form:"page"`
	Limit        string `form:"limit"`
}

// ListOrders is the handler for GET /api/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	var q orderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	// Clamp paging before it reaches the query
	page, limit, _ := database.NormalizePage(atoiOr(q.Page, 1), atoiOr(q.Limit, database.DefaultPageLimit))
	list, total, err := h.Orders.ListOrders(c.Request.Context(), models.OrderFilter{
		Status:       q.Status,
		CustomerName: q.CustomerName,
		SortBy:       q.SortBy,
		SortOrder:    q.SortOrder,
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": list,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

// GetOrder is the handler for GET /api/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	order, err := h.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CreateOrder is the handler for POST /api/orders
func (h *Handlers) CreateOrder(c *gin.Context) {
	// 1. Bind and validate the order body
	var input models.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	// 2. Price the items and deduct stock in one transaction
	order, err := h.Orders.CreateOrder(c.Request.Context(), input.CustomerName, input.Items)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"order":   order,
	})
}

// UpdateOrderStatus is the handler for PUT /api/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	// 1. Get the order ID from the URL
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	// 2. Bind and validate the requested status
	var input models.UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	// 3. Apply the transition (restores stock on cancellation)
	res, err := h.Orders.UpdateOrderStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": statusMessage(id, res),
		"order":   res.Order,
	})
}

func statusMessage(id int64, res *orders.StatusUpdate) string {
	switch {
	case !res.Changed:
		return fmt.Sprintf("Order %d status is already %s.", id, res.Order.Status)
	case res.StockRestored:
		return fmt.Sprintf("Order %d status updated to %s and stock restored.", id, res.Order.Status)
	default:
		return fmt.Sprintf("Order %d status updated to %s", id, res.Order.Status)
	}
}
