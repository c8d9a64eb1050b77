package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// CartService manages per-user shopping carts.
//
// Every mutation loads the cart, applies the change, and persists before
// returning, so the stored cart always reflects the last completed call.
// A failed save surfaces as a persistence error and the stored cart keeps
// its prior state.
//
// Stock limits are advisory here: a line may exceed available stock so the
// shopper can see and correct it. Checkout is the authoritative gate.
type CartService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(s *store.Store, logger *slog.Logger) *CartService {
	return &CartService{
		store:  s,
		logger: logger,
	}
}

// AddItemRequest adds copies of a book to the cart.
type AddItemRequest struct {
	BookID   string `json:"book_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateItemRequest sets a line's quantity. Zero or negative removes the line.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartLineView is a cart line joined with live catalog data.
type CartLineView struct {
	BookID         string `json:"book_id"`
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	SubtotalCents  int64  `json:"subtotal_cents"`
	Available      int    `json:"available"`
	// StockWarning is set when the line quantity exceeds available stock.
	// The line is kept so the shopper can correct it; checkout will refuse it.
	StockWarning bool `json:"stock_warning,omitempty"`
	// Unavailable is set when the book has been removed from the catalog.
	Unavailable bool `json:"unavailable,omitempty"`
}

// CartView is the cart presented to the client, priced against the live
// catalog. Prices here are informational; the binding prices are snapshotted
// at checkout.
type CartView struct {
	UserID     string         `json:"user_id"`
	Lines      []CartLineView `json:"lines"`
	TotalItems int            `json:"total_items"`
	TotalCents int64          `json:"total_cents"`
}

// Get returns the current cart priced against the catalog.
func (s *CartService) Get(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, cart)
}

// AddItem adds copies of a book to the cart, merging with any existing line.
// Repeated adds accumulate quantity rather than overwriting it.
func (s *CartService) AddItem(ctx context.Context, userID string, req AddItemRequest) (*CartView, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The book must exist to be carted; stock is not checked here.
	if _, err := s.store.Books.Get(ctx, req.BookID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", req.BookID)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	cart.Add(req.BookID, req.Quantity)

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	return s.buildView(ctx, cart)
}

// UpdateItem sets the quantity for a book already in the cart.
// A quantity of zero or less removes the line. Updating a book that is not
// in the cart is a no-op.
func (s *CartService) UpdateItem(ctx context.Context, userID, bookID string, req UpdateItemRequest) (*CartView, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.SetQuantity(bookID, req.Quantity)

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	return s.buildView(ctx, cart)
}

// RemoveItem deletes a line from the cart. Idempotent.
func (s *CartService) RemoveItem(ctx context.Context, userID, bookID string) (*CartView, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Remove(bookID)

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	return s.buildView(ctx, cart)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.Clear()

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	return s.buildView(ctx, cart)
}

// load fetches the user's cart, guarding against anonymous access.
func (s *CartService) load(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, domainerrors.Unauthorized("login required")
	}

	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return nil, domainerrors.Persistence(err)
	}
	return cart, nil
}

// save persists the cart, translating failures to persistence errors.
func (s *CartService) save(ctx context.Context, cart *domain.Cart) error {
	if err := s.store.SaveCart(ctx, cart); err != nil {
		if s.logger != nil {
			s.logger.Error("Failed to save cart", "user_id", cart.UserID, "error", err)
		}
		return domainerrors.Persistence(err)
	}
	return nil
}

// buildView joins cart lines with live catalog data and computes totals.
// Lines for books no longer in the catalog are kept and flagged so the
// shopper can remove them.
func (s *CartService) buildView(ctx context.Context, cart *domain.Cart) (*CartView, error) {
	view := &CartView{
		UserID: cart.UserID,
		Lines:  make([]CartLineView, 0, len(cart.Lines)),
	}

	for bookID, line := range cart.Lines {
		lineView := CartLineView{
			BookID:   bookID,
			Quantity: line.Quantity,
		}

		book, err := s.store.Books.Get(ctx, bookID)
		if err != nil {
			if domainerrors.Is(err, store.ErrNotFound) {
				lineView.Unavailable = true
				view.Lines = append(view.Lines, lineView)
				view.TotalItems += line.Quantity
				continue
			}
			return nil, fmt.Errorf("get book %s: %w", bookID, err)
		}

		lineView.Title = book.Title
		lineView.UnitPriceCents = book.PriceCents
		lineView.SubtotalCents = int64(line.Quantity) * book.PriceCents
		lineView.Available = book.StockQuantity
		lineView.StockWarning = line.Quantity > book.StockQuantity

		view.Lines = append(view.Lines, lineView)
		view.TotalItems += line.Quantity
		view.TotalCents += lineView.SubtotalCents
	}

	// Map iteration order is random; present lines deterministically.
	sort.Slice(view.Lines, func(i, j int) bool {
		return view.Lines[i].BookID < view.Lines[j].BookID
	})

	return view, nil
}
