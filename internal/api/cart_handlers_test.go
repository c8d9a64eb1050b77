package api

import (
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/service"
)

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) service.CartView {
	t.Helper()

	var envelope testEnvelope[service.CartView]
	err := json.Unmarshal(w.Body.Bytes(), &envelope)
	require.NoError(t, err)
	return envelope.Data
}

func TestCart_AddAndGet(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, token := createTestUserWithToken(t, server, "shopper@example.com", domain.RoleCustomer)
	book := createTestBook(t, server, "Dune", 1599, 10)

	w := doJSON(server, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"book_id":  book.ID,
		"quantity": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	cart := decodeCart(t, w)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, book.ID, cart.Lines[0].BookID)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, int64(2*1599), cart.TotalCents)

	// Adding again merges quantities.
	w = doJSON(server, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"book_id":  book.ID,
		"quantity": 3,
	})
	require.Equal(t, http.StatusOK, w.Code)

	cart = decodeCart(t, w)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)

	w = doJSON(server, http.MethodGet, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cart = decodeCart(t, w)
	assert.Equal(t, 5, cart.TotalItems)
}

func TestCart_AddUnknownBook(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, token := createTestUserWithToken(t, server, "shopper@example.com", domain.RoleCustomer)

	w := doJSON(server, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"book_id":  "book-missing",
		"quantity": 1,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCart_UpdateAndRemove(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, token := createTestUserWithToken(t, server, "shopper@example.com", domain.RoleCustomer)
	book := createTestBook(t, server, "Dune", 1599, 10)

	w := doJSON(server, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"book_id":  book.ID,
		"quantity": 4,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Set an exact quantity.
	w = doJSON(server, http.MethodPatch, "/api/v1/cart/items/"+book.ID, token, map[string]any{
		"quantity": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	cart := decodeCart(t, w)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)

	// Zero quantity removes the line.
	w = doJSON(server, http.MethodPatch, "/api/v1/cart/items/"+book.ID, token, map[string]any{
		"quantity": 0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	cart = decodeCart(t, w)
	assert.Empty(t, cart.Lines)

	// Removing an absent line is a no-op.
	w = doJSON(server, http.MethodDelete, "/api/v1/cart/items/"+book.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCart_Clear(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, token := createTestUserWithToken(t, server, "shopper@example.com", domain.RoleCustomer)
	book := createTestBook(t, server, "Dune", 1599, 10)

	w := doJSON(server, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"book_id":  book.ID,
		"quantity": 1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(server, http.MethodDelete, "/api/v1/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	cart := decodeCart(t, w)
	assert.Empty(t, cart.Lines)
	assert.Zero(t, cart.TotalCents)
}

func TestCart_InvalidQuantity(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, token := createTestUserWithToken(t, server, "shopper@example.com", domain.RoleCustomer)
	book := createTestBook(t, server, "Dune", 1599, 10)

	w := doJSON(server, http.MethodPost, "/api/v1/cart/items", token, map[string]any{
		"book_id":  book.ID,
		"quantity": 0,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
