package models

// Category is a distinct product category with its URL-safe slug.
// Categories are free text on products; this is a derived view, not a table.
type Category struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	ProductCount int    `json:"product_count"`
}
