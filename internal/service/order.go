package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/id"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// OrderService owns checkout and the order lifecycle.
//
// Checkout is serialized per user: a keyed mutex ensures two concurrent
// checkouts of the same cart cannot both succeed, and the store writes the
// order and clears the cart in one transaction so the cart empties if and
// only if the order is durably recorded.
type OrderService struct {
	store  *store.Store
	policy domain.StatusPolicy
	logger *slog.Logger

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewOrderService creates a new order service with the default allow-all
// status policy.
func NewOrderService(s *store.Store, logger *slog.Logger) *OrderService {
	return &OrderService{
		store:     s,
		policy:    domain.AllowAllTransitions{},
		logger:    logger,
		userLocks: make(map[string]*sync.Mutex),
	}
}

// WithStatusPolicy replaces the status transition policy.
func (s *OrderService) WithStatusPolicy(policy domain.StatusPolicy) *OrderService {
	s.policy = policy
	return s
}

// UpdateStatusRequest sets a new fulfillment status on an order.
type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status" validate:"required"`
}

// Checkout converts the user's cart into an order.
//
// The sequence is fixed: stock check against the live catalog, then order
// creation with snapshotted lines, then the atomic persist-and-clear. Any
// failure before the persist leaves the cart untouched.
func (s *OrderService) Checkout(ctx context.Context, user *domain.User) (*domain.Order, error) {
	if user == nil || user.ID == "" {
		return nil, domainerrors.Unauthorized("login required")
	}

	lock := s.userLock(user.ID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.store.GetCart(ctx, user.ID)
	if err != nil {
		return nil, domainerrors.Persistence(err)
	}

	if cart.IsEmpty() {
		return nil, domainerrors.EmptyCart("cart has no items")
	}

	// Deterministic line order for stock checks and the stored receipt.
	bookIDs := make([]string, 0, len(cart.Lines))
	for bookID := range cart.Lines {
		bookIDs = append(bookIDs, bookID)
	}
	sort.Strings(bookIDs)

	// Authoritative stock check. The cart may hold over-stock lines; here
	// they stop the purchase.
	lines := make([]domain.OrderLine, 0, len(bookIDs))
	for _, bookID := range bookIDs {
		cartLine := cart.Lines[bookID]

		book, err := s.store.Books.Get(ctx, bookID)
		if err != nil {
			if domainerrors.Is(err, store.ErrNotFound) {
				// The book left the catalog while carted.
				return nil, domainerrors.InsufficientStock(bookID, cartLine.Quantity, 0)
			}
			return nil, fmt.Errorf("get book %s: %w", bookID, err)
		}

		if !book.InStock(cartLine.Quantity) {
			return nil, domainerrors.InsufficientStock(bookID, cartLine.Quantity, book.StockQuantity)
		}

		lines = append(lines, domain.OrderLine{
			BookID:         bookID,
			BookTitle:      book.Title,
			Quantity:       cartLine.Quantity,
			UnitPriceCents: book.PriceCents,
		})
	}

	order := &domain.Order{
		UserID:        user.ID,
		UserName:      user.Name,
		UserEmail:     user.Email,
		Lines:         lines,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentCompleted,
	}
	orderID, err := id.NewOrderID()
	if err != nil {
		return nil, fmt.Errorf("generate order id: %w", err)
	}
	order.ID = orderID
	order.InitTimestamps()
	order.TotalCents = order.ComputeTotal()

	if err := s.store.CreateOrderAndClearCart(ctx, order); err != nil {
		return nil, domainerrors.Persistence(err)
	}

	if s.logger != nil {
		s.logger.Info("Order placed",
			"order_id", order.ID,
			"user_id", user.ID,
			"items", len(order.Lines),
			"total_cents", order.TotalCents,
		)
	}

	return order, nil
}

// ListForUser returns the user's own orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	if userID == "" {
		return nil, domainerrors.Unauthorized("login required")
	}

	orders, err := s.store.ListOrdersForUser(ctx, userID)
	if err != nil {
		return nil, domainerrors.Persistence(err)
	}
	return orders, nil
}

// GetForUser returns one of the user's orders by ID.
func (s *OrderService) GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if userID == "" {
		return nil, domainerrors.Unauthorized("login required")
	}

	order, err := s.store.Orders.Get(ctx, orderID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.OrderNotFound(orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	// Hide other users' orders rather than confirm they exist.
	if order.UserID != userID {
		return nil, domainerrors.OrderNotFound(orderID)
	}

	return order, nil
}

// ListAll returns every order, newest first. Admin only. A non-empty query
// filters by order ID, customer name, or email (case-insensitive substring).
func (s *OrderService) ListAll(ctx context.Context, actor *domain.User, query string) ([]*domain.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	orders, err := s.store.ListAllOrders(ctx)
	if err != nil {
		return nil, domainerrors.Persistence(err)
	}

	if query == "" {
		return orders, nil
	}

	q := strings.ToLower(query)
	filtered := make([]*domain.Order, 0, len(orders))
	for _, order := range orders {
		if strings.Contains(strings.ToLower(order.ID), q) ||
			strings.Contains(strings.ToLower(order.UserName), q) ||
			strings.Contains(strings.ToLower(order.UserEmail), q) {
			filtered = append(filtered, order)
		}
	}
	return filtered, nil
}

// UpdateStatus sets a new fulfillment status on an order. Admin only.
//
// Any status may follow any other under the default policy; the permissive
// graph is deliberate and matches how the storefront's admin tooling is
// used. UpdatedAt always moves forward on a successful change.
func (s *OrderService) UpdateStatus(ctx context.Context, actor *domain.User, orderID string, req UpdateStatusRequest) (*domain.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	if !req.Status.IsValid() {
		return nil, domainerrors.Validationf("unknown order status %q", req.Status)
	}

	order, err := s.store.Orders.Get(ctx, orderID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.OrderNotFound(orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if !s.policy.Allowed(order.Status, req.Status) {
		return nil, domainerrors.Validationf("status transition %s -> %s not allowed", order.Status, req.Status)
	}

	order.SetStatus(req.Status)

	if err := s.store.Orders.Update(ctx, orderID, order); err != nil {
		return nil, domainerrors.Persistence(err)
	}

	if s.logger != nil {
		s.logger.Info("Order status updated",
			"order_id", orderID,
			"status", req.Status,
			"admin", actor.ID,
		)
	}

	return order, nil
}

// userLock returns the checkout mutex for a user, creating it if needed.
func (s *OrderService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// requireAdmin guards admin-only operations.
func requireAdmin(actor *domain.User) error {
	if actor == nil || actor.ID == "" {
		return domainerrors.Unauthorized("login required")
	}
	if !actor.IsAdmin() {
		return domainerrors.Forbidden("admin access required")
	}
	return nil
}
