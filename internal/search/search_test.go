package search

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*SearchIndex, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewSearchIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func TestNewSearchIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexBook(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &BookDocument{
		ID:         "book-123",
		Title:      "The Hobbit",
		Author:     "J.R.R. Tolkien",
		GenreSlug:  "fantasy",
		PriceCents: 1499,
		Stock:      10,
	}

	err := index.IndexBook(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearchIndex_IndexBooks_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BookDocument{
		{ID: "book-1", Title: "Book One", PriceCents: 999},
		{ID: "book-2", Title: "Book Two", PriceCents: 1299},
		{ID: "book-3", Title: "Book Three", PriceCents: 1599},
	}

	err := index.IndexBooks(docs)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestSearchIndex_DeleteBook(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &BookDocument{
		ID:    "book-123",
		Title: "Test Book",
	}

	err := index.IndexBook(doc)
	require.NoError(t, err)

	err = index.DeleteBook("book-123")
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_Search_Basic(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BookDocument{
		{ID: "book-1", Title: "The Hobbit", Author: "J.R.R. Tolkien", GenreSlug: "fantasy", PriceCents: 1499, Stock: 5},
		{ID: "book-2", Title: "The Lord of the Rings", Author: "J.R.R. Tolkien", GenreSlug: "fantasy", PriceCents: 2999, Stock: 3},
		{ID: "book-3", Title: "Pride and Prejudice", Author: "Jane Austen", GenreSlug: "classic", PriceCents: 999, Stock: 0},
	}

	err := index.IndexBooks(docs)
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, SearchParams{
		Query: "Tolkien",
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)

	result, err = index.Search(ctx, SearchParams{
		Query: "Hobbit",
		Limit: 10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book-1", result.Hits[0].ID)
	assert.Equal(t, "The Hobbit", result.Hits[0].Title)
}

func TestSearchIndex_Search_GenreFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BookDocument{
		{ID: "book-1", Title: "The Hobbit", GenreSlug: "fantasy", PriceCents: 1499, Stock: 5},
		{ID: "book-2", Title: "Dune", GenreSlug: "science-fiction", PriceCents: 1799, Stock: 2},
	}

	err := index.IndexBooks(docs)
	require.NoError(t, err)

	result, err := index.Search(context.Background(), SearchParams{
		GenreSlug: "fantasy",
		Limit:     10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "book-1", result.Hits[0].ID)
}

func TestSearchIndex_Search_PriceRange(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BookDocument{
		{ID: "book-1", Title: "Cheap Read", PriceCents: 499, Stock: 5},
		{ID: "book-2", Title: "Mid Read", PriceCents: 1499, Stock: 5},
		{ID: "book-3", Title: "Pricey Read", PriceCents: 4999, Stock: 5},
	}

	err := index.IndexBooks(docs)
	require.NoError(t, err)

	result, err := index.Search(context.Background(), SearchParams{
		MinPriceCents: 1000,
		MaxPriceCents: 2000,
		Limit:         10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "book-2", result.Hits[0].ID)
}

func TestSearchIndex_Search_InStockOnly(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*BookDocument{
		{ID: "book-1", Title: "Available", PriceCents: 999, Stock: 3},
		{ID: "book-2", Title: "Sold Out", PriceCents: 999, Stock: 0},
	}

	err := index.IndexBooks(docs)
	require.NoError(t, err)

	result, err := index.Search(context.Background(), SearchParams{
		InStockOnly: true,
		Limit:       10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "book-1", result.Hits[0].ID)
}

func TestSearchIndex_Search_Fuzzy(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexBook(&BookDocument{
		ID:    "book-1",
		Title: "Gatsby",
	})
	require.NoError(t, err)

	// One character off should still match
	result, err := index.Search(context.Background(), SearchParams{
		Query: "Gatsbi",
		Limit: 10,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Hits)
}

func TestSearchIndex_Rebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	err := index.IndexBook(&BookDocument{ID: "book-1", Title: "Stale"})
	require.NoError(t, err)

	err = index.Rebuild()
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
