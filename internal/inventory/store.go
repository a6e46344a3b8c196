// Package inventory is the source of truth for products and their stock levels.
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/01moynul/wholesale-shop/internal/apperr"
	"github.com/01moynul/wholesale-shop/internal/database"
	"github.com/01moynul/wholesale-shop/internal/models"
)

const productColumns = `id, name, sku, category, description, price, stock, image_url, created_at, updated_at`

// productSortColumns whitelists the columns a listing may be ordered by.
var productSortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"stock":      "stock",
	"created_at": "created_at",
}

// Store reads and writes products. Stock mutations take an explicit Querier
// so they run inside the caller's transaction.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.SKU,
		&p.Category,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProduct returns the product with id, or a NotFound error.
func (s *Store) GetProduct(ctx context.Context, q database.Querier, id int64) (*models.Product, error) {
	row := q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Product with ID %d not found.", id)
		}
		return nil, fmt.Errorf("inventory: get product %d: %w", id, err)
	}
	return p, nil
}

// LockProduct is GetProduct for a read inside tx that a stock change will
// depend on. It sees the latest committed stock and holds the row until tx ends.
func (s *Store) LockProduct(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`+database.ForUpdate(s.db), id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("Product with ID %d not found.", id)
		}
		return nil, fmt.Errorf("inventory: lock product %d: %w", id, err)
	}
	return p, nil
}

// Product is GetProduct outside of any transaction.
func (s *Store) Product(ctx context.Context, id int64) (*models.Product, error) {
	return s.GetProduct(ctx, s.db, id)
}

// DecrementStock removes amount from the product's stock. It fails with
// InsufficientStock, reporting the available quantity, when amount exceeds stock.
// The guard lives in the UPDATE itself so stock can never go negative.
func (s *Store) DecrementStock(ctx context.Context, q database.Querier, id int64, amount int) error {
	if amount <= 0 {
		return apperr.Validation("Quantity must be a positive integer.")
	}

	res, err := q.ExecContext(ctx,
		`UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?`,
		amount, database.Now(), id, amount,
	)
	if err != nil {
		return fmt.Errorf("inventory: decrement stock of product %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inventory: decrement stock of product %d: %w", id, err)
	}
	if n > 0 {
		return nil
	}

	// report the committed stock, not the snapshot the UPDATE missed
	row := q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`+database.ForUpdate(s.db), id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("Product with ID %d not found.", id)
		}
		return fmt.Errorf("inventory: read stock of product %d: %w", id, err)
	}
	return NotEnoughStock(p, p.Stock, amount)
}

// IncrementStock adds amount back to the product's stock. Only used to
// reverse an earlier DecrementStock.
func (s *Store) IncrementStock(ctx context.Context, q database.Querier, id int64, amount int) error {
	res, err := q.ExecContext(ctx,
		`UPDATE products SET stock = stock + ?, updated_at = ? WHERE id = ?`,
		amount, database.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("inventory: increment stock of product %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inventory: increment stock of product %d: %w", id, err)
	}
	if n == 0 {
		return apperr.NotFound("Product with ID %d not found.", id)
	}
	return nil
}

// NotEnoughStock is the InsufficientStock error for product p.
func NotEnoughStock(p *models.Product, available, requested int) error {
	return apperr.InsufficientStock(
		"Not enough stock for product %s (ID: %d). Available: %d, Requested: %d",
		p.Name, p.ID, available, requested,
	)
}

// ListProducts returns one page of products matching filter and the total match count.
func (s *Store) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	var (
		where []string
		args  []any
	)

	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		where = append(where, "(name LIKE ? OR sku LIKE ? OR description LIKE ?)")
		args = append(args, term, term, term)
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.LowStock {
		where = append(where, "stock < ?")
		args = append(args, models.LowStockThreshold)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("inventory: count products: %w", err)
	}

	orderBy := "created_at DESC, id DESC"
	if col, ok := productSortColumns[filter.SortBy]; ok {
		dir := database.SortDirection(filter.SortOrder, "ASC")
		orderBy = fmt.Sprintf("%s %s, id %s", col, dir, dir)
	}

	_, limit, offset := database.NormalizePage(filter.Page, filter.Limit)
	query := `SELECT ` + productColumns + ` FROM products` + whereClause +
		` ORDER BY ` + orderBy + ` LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("inventory: list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("inventory: scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("inventory: iterate products: %w", err)
	}

	return products, total, nil
}

// CreateProduct validates input and inserts a new product.
func (s *Store) CreateProduct(ctx context.Context, input models.ProductInput) (*models.Product, error) {
	in, err := normalizeProductInput(input)
	if err != nil {
		return nil, err
	}

	var id int64
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.ensureSKUFree(ctx, tx, in.SKU, 0); err != nil {
			return err
		}

		now := database.Now()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO products (name, sku, category, description, price, stock, image_url, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.Name, in.SKU, in.Category, in.Description, *in.Price, *in.Stock, in.ImageURL, now, now,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Conflict("SKU already exists.")
			}
			return fmt.Errorf("inventory: insert product: %w", err)
		}

		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("inventory: get new product id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Product(ctx, id)
}

// UpdateProduct replaces every writable field of the product with id.
func (s *Store) UpdateProduct(ctx context.Context, id int64, input models.ProductInput) (*models.Product, error) {
	in, err := normalizeProductInput(input)
	if err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.GetProduct(ctx, tx, id); err != nil {
			return err
		}
		if err := s.ensureSKUFree(ctx, tx, in.SKU, id); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`UPDATE products
			 SET name = ?, sku = ?, category = ?, description = ?, price = ?, stock = ?, image_url = ?, updated_at = ?
			 WHERE id = ?`,
			in.Name, in.SKU, in.Category, in.Description, *in.Price, *in.Stock, in.ImageURL, database.Now(), id,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Conflict("SKU already exists for another product.")
			}
			return fmt.Errorf("inventory: update product %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Product(ctx, id)
}

// DeleteProduct removes a product that no order item references.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var refs int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_items WHERE product_id = ?`, id).Scan(&refs); err != nil {
			return fmt.Errorf("inventory: count order items of product %d: %w", id, err)
		}
		if refs > 0 {
			return errProductInUse
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return errProductInUse
			}
			return fmt.Errorf("inventory: delete product %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("inventory: delete product %d: %w", id, err)
		}
		if n == 0 {
			return apperr.NotFound("Product not found")
		}
		return nil
	})
}

var errProductInUse = apperr.Validation("Cannot delete product. It is referenced by existing orders. Consider archiving it instead.")

// Categories lists the distinct non-empty product categories.
func (s *Store) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM products WHERE category <> '' GROUP BY category ORDER BY category`,
	)
	if err != nil {
		return nil, fmt.Errorf("inventory: list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.Name, &c.ProductCount); err != nil {
			return nil, fmt.Errorf("inventory: scan category: %w", err)
		}
		c.Slug = slug.Make(c.Name)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inventory: iterate categories: %w", err)
	}
	return categories, nil
}

func (s *Store) ensureSKUFree(ctx context.Context, q database.Querier, sku string, exceptID int64) error {
	var existing int64
	err := q.QueryRowContext(ctx, `SELECT id FROM products WHERE sku = ? AND id <> ?`, sku, exceptID).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("inventory: check sku %q: %w", sku, err)
	case exceptID == 0:
		return apperr.Conflict("SKU already exists.")
	default:
		return apperr.Conflict("SKU already exists for another product.")
	}
}

// normalizeProductInput trims the text fields and checks the required ones.
func normalizeProductInput(in models.ProductInput) (models.ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	if in.ImageURL != nil {
		url := strings.TrimSpace(*in.ImageURL)
		if url == "" {
			in.ImageURL = nil
		} else {
			in.ImageURL = &url
		}
	}

	if in.Name == "" || in.SKU == "" || in.Price == nil || in.Stock == nil {
		return in, apperr.Validation("Name, SKU, price, and stock are required")
	}
	if in.Price.IsNegative() {
		return in, apperr.Validation("Price must be a valid non-negative number.")
	}
	if *in.Stock < 0 {
		return in, apperr.Validation("Stock must be a valid non-negative integer.")
	}
	return in, nil
}
