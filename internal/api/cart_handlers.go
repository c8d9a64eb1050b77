package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookhavenapp/bookhaven-server/internal/http/response"
	"github.com/bookhavenapp/bookhaven-server/internal/service"
)

// handleGetCart returns the authenticated user's cart with live pricing.
// GET /api/v1/cart
func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)

	cart, err := s.cartService.Get(ctx, user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, cart, s.logger)
}

// handleAddCartItem adds a book to the cart, merging with any existing line.
// POST /api/v1/cart/items
func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)

	var req service.AddItemRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	cart, err := s.cartService.AddItem(ctx, user.ID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, cart, s.logger)
}

// handleUpdateCartItem sets a cart line's quantity. Zero or negative removes it.
// PATCH /api/v1/cart/items/{bookID}
func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)
	bookID := chi.URLParam(r, "bookID")

	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	var req service.UpdateItemRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	cart, err := s.cartService.UpdateItem(ctx, user.ID, bookID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, cart, s.logger)
}

// handleRemoveCartItem removes a book from the cart.
// DELETE /api/v1/cart/items/{bookID}
func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)
	bookID := chi.URLParam(r, "bookID")

	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	cart, err := s.cartService.RemoveItem(ctx, user.ID, bookID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, cart, s.logger)
}

// handleClearCart empties the cart.
// DELETE /api/v1/cart
func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)

	cart, err := s.cartService.Clear(ctx, user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, cart, s.logger)
}
