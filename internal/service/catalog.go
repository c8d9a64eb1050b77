package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	domainerrors "github.com/bookhavenapp/bookhaven-server/internal/errors"
	"github.com/bookhavenapp/bookhaven-server/internal/genre"
	"github.com/bookhavenapp/bookhaven-server/internal/id"
	"github.com/bookhavenapp/bookhaven-server/internal/search"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// CatalogService manages the book catalog: browsing, search, and admin CRUD.
// It keeps the search index in sync with the store on every write.
type CatalogService struct {
	store  *store.Store
	search *search.SearchIndex
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(s *store.Store, idx *search.SearchIndex, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  s,
		search: idx,
		logger: logger,
	}
}

// CreateBookRequest contains the data for a new catalog entry.
type CreateBookRequest struct {
	Title         string   `json:"title" validate:"required"`
	Authors       []string `json:"authors" validate:"required,min=1"`
	Genre         string   `json:"genre"`
	ISBN          string   `json:"isbn"`
	PriceCents    int64    `json:"price_cents" validate:"gte=0"`
	StockQuantity int      `json:"stock_quantity" validate:"gte=0"`
	Description   string   `json:"description"`
	ImageURL      string   `json:"image_url"`
}

// UpdateBookRequest contains partial updates for a catalog entry.
// Nil fields are left unchanged.
type UpdateBookRequest struct {
	Title         *string   `json:"title,omitempty"`
	Authors       *[]string `json:"authors,omitempty"`
	Genre         *string   `json:"genre,omitempty"`
	ISBN          *string   `json:"isbn,omitempty"`
	PriceCents    *int64    `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	StockQuantity *int      `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	Description   *string   `json:"description,omitempty"`
	ImageURL      *string   `json:"image_url,omitempty"`
}

// ListBooks returns a page of the catalog sorted by title.
// The cursor is the ID of the last book on the previous page.
func (s *CatalogService) ListBooks(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.Book], error) {
	params.Validate()

	var books []*domain.Book
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list books: %w", err)
		}
		books = append(books, book)
	}

	sort.Slice(books, func(i, j int) bool {
		if books[i].Title == books[j].Title {
			return books[i].ID < books[j].ID
		}
		return books[i].Title < books[j].Title
	})

	start := 0
	if params.Cursor != "" {
		lastID, err := store.DecodeCursor(params.Cursor)
		if err != nil {
			return nil, domainerrors.Validation("invalid cursor")
		}
		for i, book := range books {
			if book.ID == lastID {
				start = i + 1
				break
			}
		}
	}

	end := start + params.Limit
	if end > len(books) {
		end = len(books)
	}

	result := &store.PaginatedResult[*domain.Book]{
		Items:   books[start:end],
		HasMore: end < len(books),
		Total:   len(books),
	}
	if result.HasMore && len(result.Items) > 0 {
		result.NextCursor = store.EncodeCursor(result.Items[len(result.Items)-1].ID)
	}

	return result, nil
}

// GetBook returns a single book by ID.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", bookID)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// Search runs a full-text query against the catalog index.
func (s *CatalogService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = search.DefaultSearchParams().Limit
	}
	return s.search.Search(ctx, params)
}

// CreateBook adds a new book to the catalog and indexes it.
func (s *CatalogService) CreateBook(ctx context.Context, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Title:         req.Title,
		Authors:       req.Authors,
		Genre:         req.Genre,
		GenreSlug:     genre.NormalizeToSlug(req.Genre),
		ISBN:          req.ISBN,
		PriceCents:    req.PriceCents,
		StockQuantity: req.StockQuantity,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
	}
	book.ID = bookID
	book.InitTimestamps()

	if err := book.Validate(); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	if err := s.store.Books.Create(ctx, bookID, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.indexBook(book)

	if s.logger != nil {
		s.logger.Info("Book created", "book_id", bookID, "title", book.Title)
	}

	return book, nil
}

// UpdateBook applies a partial update to a book and reindexes it.
func (s *CatalogService) UpdateBook(ctx context.Context, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Authors != nil {
		book.Authors = *req.Authors
	}
	if req.Genre != nil {
		book.Genre = *req.Genre
		book.GenreSlug = genre.NormalizeToSlug(*req.Genre)
	}
	if req.ISBN != nil {
		book.ISBN = *req.ISBN
	}
	if req.PriceCents != nil {
		book.PriceCents = *req.PriceCents
	}
	if req.StockQuantity != nil {
		book.StockQuantity = *req.StockQuantity
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.ImageURL != nil {
		book.ImageURL = *req.ImageURL
	}
	book.Touch()

	if err := book.Validate(); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	if err := s.store.Books.Update(ctx, bookID, book); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", bookID)
		}
		return nil, fmt.Errorf("update book: %w", err)
	}

	s.indexBook(book)

	return book, nil
}

// DeleteBook removes a book from the catalog and the search index.
// Idempotent - deleting an absent book is not an error.
func (s *CatalogService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.Books.Delete(ctx, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if s.search != nil {
		if err := s.search.DeleteBook(bookID); err != nil && s.logger != nil {
			s.logger.Warn("Failed to remove book from search index", "book_id", bookID, "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("Book deleted", "book_id", bookID)
	}

	return nil
}

// ImportBook upserts a book from an external source (seed tool, import
// watcher). Books are matched by ISBN when present, otherwise a new entry
// is created.
func (s *CatalogService) ImportBook(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	if book.GenreSlug == "" && book.Genre != "" {
		book.GenreSlug = genre.NormalizeToSlug(book.Genre)
	}

	if err := book.Validate(); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	// Match existing entry by ISBN so re-importing a drop file updates
	// rather than duplicates.
	if book.ISBN != "" {
		for existing, err := range s.store.Books.List(ctx) {
			if err != nil {
				return nil, fmt.Errorf("scan books: %w", err)
			}
			if existing.ISBN == book.ISBN {
				book.Record = existing.Record
				book.Touch()
				if err := s.store.Books.Update(ctx, existing.ID, book); err != nil {
					return nil, fmt.Errorf("update imported book: %w", err)
				}
				s.indexBook(book)
				return book, nil
			}
		}
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}
	book.ID = bookID
	book.InitTimestamps()

	if err := s.store.Books.Create(ctx, bookID, book); err != nil {
		return nil, fmt.Errorf("create imported book: %w", err)
	}

	s.indexBook(book)
	return book, nil
}

// RebuildSearchIndex drops the index and reindexes the whole catalog.
func (s *CatalogService) RebuildSearchIndex(ctx context.Context) error {
	if s.search == nil {
		return nil
	}

	if err := s.search.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	var docs []*search.BookDocument
	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		docs = append(docs, search.BookToDocument(book))
	}

	if err := s.search.IndexBooks(docs); err != nil {
		return fmt.Errorf("index books: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Search index rebuilt", "books", len(docs))
	}

	return nil
}

// indexBook updates the search index for a book, logging failures instead
// of failing the write. The store is the source of truth; the index can be
// rebuilt.
func (s *CatalogService) indexBook(book *domain.Book) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexBook(search.BookToDocument(book)); err != nil && s.logger != nil {
		s.logger.Warn("Failed to index book", "book_id", book.ID, "error", err)
	}
}
