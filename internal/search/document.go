// Package search provides full-text catalog search using Bleve.
// Books are indexed with their titles, authors, and descriptions for
// fuzzy matching, plus keyword and numeric fields for filtering.
package search

import (
	"strings"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// BookDocument is the document structure for the Bleve index.
//
// Author names are denormalized into a single field so one query covers
// title and author matches without fanning out to a second lookup.
type BookDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"` // All authors joined, denormalized for search
	Description string `json:"description,omitempty"`
	ISBN        string `json:"isbn,omitempty"`

	// Genre slug for exact filtering
	GenreSlug string `json:"genre_slug,omitempty"`

	// Numeric fields for range queries and sorting
	PriceCents int64   `json:"price_cents"`
	Stock      int     `json:"stock"`
	Rating     float64 `json:"rating,omitempty"`

	// Timestamps for sorting by recency (unix millis)
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *BookDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":          d.ID,
		"title":       d.Title,
		"author":      d.Author,
		"price_cents": d.PriceCents,
		"stock":       d.Stock,
		"created_at":  d.CreatedAt,
		"updated_at":  d.UpdatedAt,
	}

	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.ISBN != "" {
		m["isbn"] = d.ISBN
	}
	if d.GenreSlug != "" {
		m["genre_slug"] = d.GenreSlug
	}
	if d.Rating > 0 {
		m["rating"] = d.Rating
	}

	return m
}

// BookToDocument converts a domain Book to a BookDocument.
func BookToDocument(book *domain.Book) *BookDocument {
	doc := &BookDocument{
		ID:          book.ID,
		Title:       book.Title,
		Author:      strings.Join(book.Authors, ", "),
		Description: book.Description,
		ISBN:        book.ISBN,
		GenreSlug:   book.GenreSlug,
		PriceCents:  book.PriceCents,
		Stock:       book.StockQuantity,
		CreatedAt:   book.CreatedAt.UnixMilli(),
		UpdatedAt:   book.UpdatedAt.UnixMilli(),
	}

	if book.Rating != nil {
		doc.Rating = *book.Rating
	}

	return doc
}
