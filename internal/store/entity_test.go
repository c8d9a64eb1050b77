package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
)

// setupTestStore creates a store backed by a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func testBook(id, title string, priceCents int64, stock int) *domain.Book {
	book := &domain.Book{
		Title:         title,
		Authors:       []string{"Test Author"},
		Genre:         "Fiction",
		PriceCents:    priceCents,
		StockQuantity: stock,
	}
	book.ID = id
	book.InitTimestamps()
	return book
}

func TestEntity_CreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	book := testBook("book-1", "The Go Programming Language", 3499, 5)
	require.NoError(t, s.Books.Create(ctx, book.ID, book))

	got, err := s.Books.Get(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, "The Go Programming Language", got.Title)
	assert.Equal(t, int64(3499), got.PriceCents)
	assert.Equal(t, 5, got.StockQuantity)
}

func TestEntity_Create_DuplicateID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	book := testBook("book-1", "First", 100, 1)
	require.NoError(t, s.Books.Create(ctx, book.ID, book))

	dup := testBook("book-1", "Second", 200, 2)
	err := s.Books.Create(ctx, dup.ID, dup)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestEntity_Get_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Books.Get(context.Background(), "book-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntity_Update(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	book := testBook("book-1", "Original", 1000, 3)
	require.NoError(t, s.Books.Create(ctx, book.ID, book))

	book.Title = "Updated"
	book.StockQuantity = 0
	require.NoError(t, s.Books.Update(ctx, book.ID, book))

	got, err := s.Books.Get(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Title)
	assert.Equal(t, 0, got.StockQuantity)
}

func TestEntity_Update_NotFound(t *testing.T) {
	s := setupTestStore(t)

	book := testBook("book-ghost", "Ghost", 100, 1)
	err := s.Books.Update(context.Background(), book.ID, book)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntity_Delete_Idempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	book := testBook("book-1", "Doomed", 100, 1)
	require.NoError(t, s.Books.Create(ctx, book.ID, book))

	require.NoError(t, s.Books.Delete(ctx, "book-1"))
	require.NoError(t, s.Books.Delete(ctx, "book-1")) // Second delete is a no-op

	_, err := s.Books.Get(ctx, "book-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntity_List(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"book-1", "book-2", "book-3"} {
		book := testBook(id, "Title "+id, 500, 1)
		require.NoError(t, s.Books.Create(ctx, book.ID, book))
	}

	var ids []string
	for book, err := range s.Books.List(ctx) {
		require.NoError(t, err)
		ids = append(ids, book.ID)
	}

	assert.Len(t, ids, 3)
	assert.ElementsMatch(t, []string{"book-1", "book-2", "book-3"}, ids)
}

func TestUsers_EmailIndex_CaseInsensitive(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	user := &domain.User{
		Email: "Shopper@Example.com",
		Name:  "Shopper",
		Role:  domain.RoleCustomer,
	}
	user.ID = "user-1"
	user.InitTimestamps()
	require.NoError(t, s.Users.Create(ctx, user.ID, user))

	got, err := s.Users.GetByIndex(ctx, "email", "shopper@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)
}

func TestUsers_EmailIndex_Conflict(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := &domain.User{Email: "taken@example.com", Name: "First", Role: domain.RoleCustomer}
	first.ID = "user-1"
	require.NoError(t, s.Users.Create(ctx, first.ID, first))

	second := &domain.User{Email: "TAKEN@example.com", Name: "Second", Role: domain.RoleCustomer}
	second.ID = "user-2"
	err := s.Users.Create(ctx, second.ID, second)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCarts_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	cart := domain.NewCart("user-1")
	cart.Add("book-a", 2)
	cart.Add("book-b", 1)

	require.NoError(t, s.Carts.Create(ctx, cart.UserID, cart))

	got, err := s.Carts.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity("book-a"))
	assert.Equal(t, 1, got.Quantity("book-b"))
	assert.Equal(t, 3, got.TotalItems())
}

func TestEntity_List_ContextCancelled(t *testing.T) {
	s := setupTestStore(t)

	book := testBook("book-1", "Title", 100, 1)
	require.NoError(t, s.Books.Create(context.Background(), book.ID, book))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var lastErr error
	for _, err := range s.Books.List(ctx) {
		lastErr = err
	}
	assert.ErrorIs(t, lastErr, context.Canceled)
}

func TestEntity_Timestamps_SurviveRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	book := testBook("book-1", "Title", 100, 1)
	created := book.CreatedAt
	require.NoError(t, s.Books.Create(ctx, book.ID, book))

	got, err := s.Books.Get(ctx, "book-1")
	require.NoError(t, err)
	assert.WithinDuration(t, created, got.CreatedAt, time.Second)
}
