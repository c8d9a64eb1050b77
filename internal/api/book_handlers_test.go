package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/search"
)

func TestGetBook(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	book := createTestBook(t, server, "The Name of the Wind", 1899, 4)

	w := doJSON(server, http.MethodGet, "/api/v1/books/"+book.ID, "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope testEnvelope[domain.Book]
	err := json.Unmarshal(w.Body.Bytes(), &envelope)
	require.NoError(t, err)
	assert.Equal(t, "The Name of the Wind", envelope.Data.Title)
}

func TestGetBook_NotFound(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := doJSON(server, http.MethodGet, "/api/v1/books/book-missing", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBooks_Pagination(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	createTestBook(t, server, "Alpha", 1000, 1)
	createTestBook(t, server, "Bravo", 1000, 1)
	createTestBook(t, server, "Charlie", 1000, 1)

	w := doJSON(server, http.MethodGet, "/api/v1/books?limit=2", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)

	items, ok := data["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 2)
	assert.Equal(t, true, data["has_more"])
	assert.NotEmpty(t, data["next_cursor"])
}

func TestSearchBooks(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	createTestBook(t, server, "The Hobbit", 1299, 5)
	createTestBook(t, server, "A Brief History of Time", 2199, 3)

	w := doJSON(server, http.MethodGet, "/api/v1/books/search?q=hobbit", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope testEnvelope[search.SearchResult]
	err := json.Unmarshal(w.Body.Bytes(), &envelope)
	require.NoError(t, err)
	require.Len(t, envelope.Data.Hits, 1)
	assert.Equal(t, "The Hobbit", envelope.Data.Hits[0].Title)
}

func TestSearchBooks_Filters(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	createTestBook(t, server, "Cheap Paperback", 499, 5)
	createTestBook(t, server, "Fancy Hardcover", 3999, 5)

	w := doJSON(server, http.MethodGet, "/api/v1/books/search?max_price=1000", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope testEnvelope[search.SearchResult]
	err := json.Unmarshal(w.Body.Bytes(), &envelope)
	require.NoError(t, err)
	require.Len(t, envelope.Data.Hits, 1)
	assert.Equal(t, "Cheap Paperback", envelope.Data.Hits[0].Title)
}
