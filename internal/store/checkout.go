package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// CreateOrderAndClearCart writes the order and empties the owner's cart in a
// single transaction. Checkout depends on this being atomic: the cart is
// cleared if and only if the order is durably recorded, so a crash between
// the two can never lose the shopper's cart without producing an order.
func (s *Store) CreateOrderAndClearCart(ctx context.Context, order *domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	orderData, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	emptyCart := domain.NewCart(order.UserID)
	cartData, err := json.Marshal(emptyCart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	orderKey := []byte(orderPrefix + order.ID)
	cartKey := []byte(cartPrefix + order.UserID)

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(orderKey); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check order key: %w", err)
		}

		if err := txn.Set(orderKey, orderData); err != nil {
			return fmt.Errorf("failed to set order: %w", err)
		}
		if err := txn.Set(cartKey, cartData); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
}

// ListOrdersForUser returns all orders owned by the given user,
// newest first.
func (s *Store) ListOrdersForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	var orders []*domain.Order
	for order, err := range s.Orders.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}

	sortOrdersNewestFirst(orders)
	return orders, nil
}

// ListAllOrders returns every order in the store, newest first.
func (s *Store) ListAllOrders(ctx context.Context) ([]*domain.Order, error) {
	var orders []*domain.Order
	for order, err := range s.Orders.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		orders = append(orders, order)
	}

	sortOrdersNewestFirst(orders)
	return orders, nil
}

// sortOrdersNewestFirst sorts by CreatedAt descending, falling back to ID so
// the order is stable when timestamps collide.
func sortOrdersNewestFirst(orders []*domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
