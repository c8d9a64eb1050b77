// Package domain contains the core business entities and domain logic for the BookHaven storefront.
package domain

import "fmt"

// Book represents a title in the catalog.
//
// Price is stored in integer cents to keep arithmetic exact; the UI layer is
// responsible for display formatting.
type Book struct {
	Record
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Genre         string   `json:"genre,omitempty"`
	GenreSlug     string   `json:"genre_slug,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
	PriceCents    int64    `json:"price_cents"`
	StockQuantity int      `json:"stock_quantity"`
	Description   string   `json:"description,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	ReviewCount   int      `json:"review_count,omitempty"`
}

// Validate checks the book's invariants.
func (b *Book) Validate() error {
	if b.Title == "" {
		return fmt.Errorf("title is required")
	}
	if b.PriceCents < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if b.StockQuantity < 0 {
		return fmt.Errorf("stock quantity must not be negative")
	}
	return nil
}

// InStock returns true if at least the requested quantity is available.
func (b *Book) InStock(quantity int) bool {
	return quantity <= b.StockQuantity
}

// AuthorLine returns the authors joined for display, preserving order.
func (b *Book) AuthorLine() string {
	line := ""
	for i, a := range b.Authors {
		if i > 0 {
			line += ", "
		}
		line += a
	}
	return line
}
