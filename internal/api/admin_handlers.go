package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookhavenapp/bookhaven-server/internal/http/response"
	"github.com/bookhavenapp/bookhaven-server/internal/service"
)

// Catalog management.

// handleCreateBook adds a book to the catalog.
// POST /api/v1/admin/books
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.CreateBookRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.catalogService.CreateBook(ctx, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, book, s.logger)
}

// handleUpdateBook applies a partial update to a catalog entry.
// PATCH /api/v1/admin/books/{id}
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := chi.URLParam(r, "id")

	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	var req service.UpdateBookRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	book, err := s.catalogService.UpdateBook(ctx, bookID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleDeleteBook removes a book from the catalog.
// DELETE /api/v1/admin/books/{id}
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := chi.URLParam(r, "id")

	if bookID == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	if err := s.catalogService.DeleteBook(ctx, bookID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleRebuildIndex rebuilds the search index from the store.
// POST /api/v1/admin/books/reindex
func (s *Server) handleRebuildIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := s.catalogService.RebuildSearchIndex(ctx); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{"status": "reindexed"}, s.logger)
}

// Order management.

// handleListAllOrders returns all orders, optionally filtered by a
// customer name, email, or order ID fragment.
// GET /api/v1/admin/orders?q=...
func (s *Server) handleListAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := currentUser(ctx)

	orders, err := s.orderService.ListAll(ctx, actor, r.URL.Query().Get("q"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, orders, s.logger)
}

// handleUpdateOrderStatus transitions an order to a new status.
// PATCH /api/v1/admin/orders/{id}/status
func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := currentUser(ctx)
	orderID := chi.URLParam(r, "id")

	if orderID == "" {
		response.BadRequest(w, "Order ID is required", s.logger)
		return
	}

	var req service.UpdateStatusRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	order, err := s.orderService.UpdateStatus(ctx, actor, orderID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, order, s.logger)
}

// handleGetStats returns storefront totals for the admin dashboard.
// GET /api/v1/admin/stats
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := currentUser(ctx)

	overview, err := s.statsService.GetOverview(ctx, actor)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, overview, s.logger)
}
