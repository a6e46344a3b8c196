package inventory

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/01moynul/wholesale-shop/internal/apperr"
	"github.com/01moynul/wholesale-shop/internal/database"
	"github.com/01moynul/wholesale-shop/internal/database/databasetest"
	"github.com/01moynul/wholesale-shop/internal/models"
)

func productInput(name, sku, category, price string, stock int) models.ProductInput {
	p := decimal.RequireFromString(price)
	return models.ProductInput{
		Name:     name,
		SKU:      sku,
		Category: category,
		Price:    &p,
		Stock:    &stock,
	}
}

func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db := databasetest.Open(t)
	return NewStore(db), db
}

func mustCreate(t *testing.T, s *Store, in models.ProductInput) *models.Product {
	t.Helper()
	p, err := s.CreateProduct(context.Background(), in)
	require.NoError(t, err)
	return p
}

func TestCreateAndGetProduct(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	in := productInput("  Blue Mug ", " MUG-1 ", "Kitchen", "10.50", 7)
	url := "http://localhost:9000/uploads/mug.png"
	in.ImageURL = &url

	created := mustCreate(t, s, in)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Blue Mug", created.Name)
	assert.Equal(t, "MUG-1", created.SKU)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("10.5")))
	assert.Equal(t, 7, created.Stock)
	require.NotNil(t, created.ImageURL)
	assert.Equal(t, url, *created.ImageURL)
	assert.True(t, created.IsLowStock())

	got, err := s.Product(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.SKU, got.SKU)

	_, err = s.Product(ctx, created.ID+100)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCreateProductValidation(t *testing.T) {
	s, _ := newTestStore(t)
	neg := decimal.RequireFromString("-1")
	negStock := -2

	tests := []struct {
		name   string
		mutate func(in *models.ProductInput)
	}{
		{"missing name", func(in *models.ProductInput) { in.Name = "  " }},
		{"missing sku", func(in *models.ProductInput) { in.SKU = "" }},
		{"missing price", func(in *models.ProductInput) { in.Price = nil }},
		{"missing stock", func(in *models.ProductInput) { in.Stock = nil }},
		{"negative price", func(in *models.ProductInput) { in.Price = &neg }},
		{"negative stock", func(in *models.ProductInput) { in.Stock = &negStock }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := productInput("Mug", "MUG-1", "", "1", 1)
			tt.mutate(&in)
			_, err := s.CreateProduct(context.Background(), in)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreate(t, s, productInput("Mug", "MUG-1", "", "1", 1))

	_, err := s.CreateProduct(context.Background(), productInput("Other", "MUG-1", "", "2", 2))
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestUpdateProduct(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, productInput("Mug", "MUG-1", "", "1", 1))
	mustCreate(t, s, productInput("Plate", "PLT-1", "", "2", 2))

	updated, err := s.UpdateProduct(ctx, a.ID, productInput("Big Mug", "MUG-1", "Kitchen", "3.25", 40))
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", updated.Name)
	assert.Equal(t, "Kitchen", updated.Category)
	assert.Equal(t, 40, updated.Stock)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("3.25")))

	_, err = s.UpdateProduct(ctx, a.ID, productInput("Big Mug", "PLT-1", "", "3", 1))
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = s.UpdateProduct(ctx, a.ID+100, productInput("Ghost", "GHOST", "", "3", 1))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDecrementAndIncrementStock(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()
	p := mustCreate(t, s, productInput("Mug", "MUG-1", "", "10", 5))

	require.NoError(t, s.DecrementStock(ctx, db, p.ID, 2))
	got, err := s.Product(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)

	err = s.DecrementStock(ctx, db, p.ID, 4)
	require.True(t, apperr.Is(err, apperr.KindInsufficientStock))
	assert.Contains(t, err.Error(), "Available: 3")
	assert.Contains(t, err.Error(), "Requested: 4")

	err = s.DecrementStock(ctx, db, p.ID, 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = s.DecrementStock(ctx, db, p.ID+100, 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, s.IncrementStock(ctx, db, p.ID, 2))
	got, err = s.Product(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)

	err = s.IncrementStock(ctx, db, p.ID+100, 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestStockReadsInsideTransaction(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()
	p := mustCreate(t, s, productInput("Mug", "MUG-1", "", "10", 5))
	require.NoError(t, s.DecrementStock(ctx, db, p.ID, 3))

	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		locked, err := s.LockProduct(ctx, tx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, locked.Stock)

		_, err = s.LockProduct(ctx, tx, p.ID+100)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))

		return s.DecrementStock(ctx, tx, p.ID, 3)
	})
	require.True(t, apperr.Is(err, apperr.KindInsufficientStock))
	assert.Contains(t, err.Error(), "Available: 2, Requested: 3")
}

func TestDeleteProduct(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()
	used := mustCreate(t, s, productInput("Mug", "MUG-1", "", "10", 5))
	unused := mustCreate(t, s, productInput("Plate", "PLT-1", "", "2", 5))

	now := database.Now()
	res, err := db.ExecContext(ctx,
		`INSERT INTO orders (customer_name, order_date, total_amount, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"Acme", now, 10, models.StatusPending, now, now,
	)
	require.NoError(t, err)
	orderID, err := res.LastInsertId()
	require.NoError(t, err)
	_, err = db.ExecContext(ctx,
		`INSERT INTO order_items (order_id, product_id, quantity, price_per_unit, total_price, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		orderID, used.ID, 1, 10, 10, now,
	)
	require.NoError(t, err)

	err = s.DeleteProduct(ctx, used.ID)
	require.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "referenced by existing orders")
	_, err = s.Product(ctx, used.ID)
	assert.NoError(t, err)

	require.NoError(t, s.DeleteProduct(ctx, unused.ID))
	_, err = s.Product(ctx, unused.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = s.DeleteProduct(ctx, unused.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListProducts(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, productInput("Blue Mug", "MUG-1", "Kitchen", "4", 50))
	mustCreate(t, s, productInput("Red Mug", "MUG-2", "Kitchen", "6", 3))
	mustCreate(t, s, productInput("Desk Lamp", "LMP-1", "Office", "25", 12))

	tests := []struct {
		name      string
		filter    models.ProductFilter
		wantTotal int
		wantSKUs  []string
	}{
		{"search", models.ProductFilter{Search: "mug", SortBy: "name"}, 2, []string{"MUG-1", "MUG-2"}},
		{"search sku", models.ProductFilter{Search: "LMP"}, 1, []string{"LMP-1"}},
		{"category", models.ProductFilter{Category: "Office"}, 1, []string{"LMP-1"}},
		{"low stock", models.ProductFilter{LowStock: true}, 1, []string{"MUG-2"}},
		{"price desc", models.ProductFilter{SortBy: "price", SortOrder: "desc"}, 3, []string{"LMP-1", "MUG-2", "MUG-1"}},
		{"stock asc", models.ProductFilter{SortBy: "stock"}, 3, []string{"MUG-2", "LMP-1", "MUG-1"}},
		{"paged", models.ProductFilter{SortBy: "price", Page: 2, Limit: 2}, 3, []string{"LMP-1"}},
		{"bad sort falls back", models.ProductFilter{SortBy: "price; DROP TABLE products", Limit: 1}, 3, []string{"LMP-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, total, err := s.ListProducts(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)

			skus := make([]string, 0, len(products))
			for _, p := range products {
				skus = append(skus, p.SKU)
			}
			assert.Equal(t, tt.wantSKUs, skus)
		})
	}
}

func TestCategories(t *testing.T) {
	s, _ := newTestStore(t)
	mustCreate(t, s, productInput("Blue Mug", "MUG-1", "Kitchen & Dining", "4", 50))
	mustCreate(t, s, productInput("Red Mug", "MUG-2", "Kitchen & Dining", "6", 3))
	mustCreate(t, s, productInput("Desk Lamp", "LMP-1", "Office", "25", 12))
	mustCreate(t, s, productInput("Loose Item", "LSE-1", "", "1", 1))

	categories, err := s.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Category{
		{Name: "Kitchen & Dining", Slug: "kitchen-and-dining", ProductCount: 2},
		{Name: "Office", Slug: "office", ProductCount: 1},
	}, categories)
}
