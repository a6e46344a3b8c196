package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/wholesale-shop/internal/database"
	"github.com/01moynul/wholesale-shop/internal/models"
)

type productListQuery struct {
	Search    string `form:"search"`
	Category  string `form:"category"`
	LowStock  string `form:"lowStock"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	Page      string `form:"page"`
	Limit     string `form:"limit"`
}

// ListProducts is the handler for GET /api/products
func (h *Handlers) ListProducts(c *gin.Context) {
	var q productListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	// Clamp paging before it reaches the query
	page, limit, _ := database.NormalizePage(atoiOr(q.Page, 1), atoiOr(q.Limit, database.DefaultPageLimit))
	products, total, err := h.Inventory.ListProducts(c.Request.Context(), models.ProductFilter{
		Search:    q.Search,
		Category:  q.Category,
		LowStock:  queryBool(q.LowStock),
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// ListCategories is the handler for GET /api/products/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := h.Inventory.Categories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetProduct is the handler for GET /api/products/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	product, err := h.Inventory.Product(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct is the handler for POST /api/products
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	product, err := h.Inventory.CreateProduct(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct is the handler for PUT /api/products/:id
func (h *Handlers) UpdateProduct(c *gin.Context) {
	// 1. Get the product ID from the URL
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	// 2. Bind the full replacement body
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	// 3. Validate and save (SKU must stay unique)
	product, err := h.Inventory.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct is the handler for DELETE /api/products/:id
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.Inventory.DeleteProduct(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}
