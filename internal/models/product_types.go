package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The admin UI does arithmetic on money fields, so they go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// LowStockThreshold is the stock level below which a product counts as low stock.
const LowStockThreshold = 10

// Product is the model for the 'products' table.
// ImageURL is a pointer so an unset image serializes as null.
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	SKU         string          `json:"sku" db:"sku"`
	Category    string          `json:"category" db:"category"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	ImageURL    *string         `json:"image_url" db:"image_url"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// IsLowStock reports whether the product is below LowStockThreshold.
func (p *Product) IsLowStock() bool {
	return p.Stock < LowStockThreshold
}

// ProductInput holds the writable product fields for create and update.
// Price and Stock are pointers so a missing field can be told apart from zero.
type ProductInput struct {
	Name        string           `json:"name" binding:"required"`
	SKU         string           `json:"sku" binding:"required"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Stock       *int             `json:"stock" binding:"required"`
	ImageURL    *string          `json:"image_url"`
}

// ProductFilter drives the product listing query.
type ProductFilter struct {
	Search    string
	Category  string
	LowStock  bool
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}
