package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookhavenapp/bookhaven-server/internal/http/response"
)

// handleCheckout converts the user's cart into an order.
// POST /api/v1/orders
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)

	order, err := s.orderService.Checkout(ctx, user)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, order, s.logger)
}

// handleListMyOrders returns the user's order history, newest first.
// GET /api/v1/orders
func (s *Server) handleListMyOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)

	orders, err := s.orderService.ListForUser(ctx, user.ID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, orders, s.logger)
}

// handleGetMyOrder returns one of the user's orders by ID.
// GET /api/v1/orders/{id}
func (s *Server) handleGetMyOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := currentUser(ctx)
	orderID := chi.URLParam(r, "id")

	if orderID == "" {
		response.BadRequest(w, "Order ID is required", s.logger)
		return
	}

	order, err := s.orderService.GetForUser(ctx, user.ID, orderID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, order, s.logger)
}
