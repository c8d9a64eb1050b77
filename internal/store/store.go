// Package store provides the durable local store for the BookHaven server,
// backed by BadgerDB. Every entity is persisted as a JSON value under a
// prefixed key; secondary indexes are plain key-to-ID mappings.
package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// Generic entities
	Users  *Entity[domain.User]
	Books  *Entity[domain.Book]
	Carts  *Entity[domain.Cart]
	Orders *Entity[domain.Order]
}

// Key prefixes. Carts are keyed by owner user ID - one cart per identity.
const (
	userPrefix  = "user:"
	bookPrefix  = "book:"
	cartPrefix  = "cart:"
	orderPrefix = "order:"
)

// New creates a new Store instance with the given database path.
// SyncWrites is enabled so cart and order mutations are durable before the
// call returns - checkout relies on this.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil      // Disable Badger's internal logging
	opts.SyncWrites = true // Writes must hit disk before we report success
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	store.Users = NewEntity[domain.User](store, userPrefix).
		WithIndexTransform("email",
			func(u *domain.User) []string {
				return []string{NormalizeEmail(u.Email)}
			},
			NormalizeEmail, // Case-insensitive email lookups
		)
	store.Books = NewEntity[domain.Book](store, bookPrefix)
	store.Carts = NewEntity[domain.Cart](store, cartPrefix)
	store.Orders = NewEntity[domain.Order](store, orderPrefix)

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// NormalizeEmail lowercases and trims an email address for indexing.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Helper methods for raw database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
