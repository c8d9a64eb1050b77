package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/id"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// setupTestStore creates a temporary badger store for testing.
func setupTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "bookhaven-service-test-*")
	require.NoError(t, err)

	s, err := store.New(tmpDir, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

// createTestUser creates a user with the given role directly in the store.
func createTestUser(t *testing.T, s *store.Store, email string, role domain.Role) *domain.User {
	t.Helper()

	userID, err := id.Generate("user")
	require.NoError(t, err)

	user := &domain.User{
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Name:         "Test User",
		Role:         role,
	}
	user.ID = userID
	user.InitTimestamps()

	require.NoError(t, s.Users.Create(context.Background(), userID, user))

	return user
}

// createTestBook creates a book with the given price and stock.
func createTestBook(t *testing.T, s *store.Store, title string, priceCents int64, stock int) *domain.Book {
	t.Helper()

	bookID, err := id.Generate("book")
	require.NoError(t, err)

	book := &domain.Book{
		Title:         title,
		Authors:       []string{"Test Author"},
		Genre:         "Fiction",
		GenreSlug:     "fiction",
		PriceCents:    priceCents,
		StockQuantity: stock,
	}
	book.ID = bookID
	book.InitTimestamps()

	require.NoError(t, s.Books.Create(context.Background(), bookID, book))

	return book
}

// testLogger returns a logger that discards output.
func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
