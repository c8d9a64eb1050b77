package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// GetCart returns the cart owned by the given user. A user who has never
// carted anything gets a fresh empty cart rather than ErrNotFound.
func (s *Store) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cart domain.Cart
	err := s.get([]byte(cartPrefix+userID), &cart)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.NewCart(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if cart.Lines == nil {
		cart.Lines = make(map[string]domain.CartLine)
	}
	return &cart, nil
}

// SaveCart persists the cart under its owner's key, overwriting any prior
// state. Every cart mutation goes through here so the stored cart always
// reflects the last completed operation.
func (s *Store) SaveCart(ctx context.Context, cart *domain.Cart) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set([]byte(cartPrefix+cart.UserID), cart)
}
