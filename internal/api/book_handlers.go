package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bookhavenapp/bookhaven-server/internal/http/response"
	"github.com/bookhavenapp/bookhaven-server/internal/search"
)

// handleListBooks returns a paginated list of the catalog.
// GET /api/v1/books
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := parsePaginationParams(r)

	books, err := s.catalogService.ListBooks(ctx, params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, books, s.logger)
}

// handleGetBook returns a single book by ID.
// GET /api/v1/books/{id}
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if id == "" {
		response.BadRequest(w, "Book ID is required", s.logger)
		return
	}

	book, err := s.catalogService.GetBook(ctx, id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, book, s.logger)
}

// handleSearchBooks runs a full-text catalog search.
// GET /api/v1/books/search?q=...
func (s *Server) handleSearchBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := parseSearchParams(r)

	result, err := s.catalogService.Search(ctx, params)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// parseSearchParams builds search parameters from the query string.
func parseSearchParams(r *http.Request) search.SearchParams {
	q := r.URL.Query()
	params := search.DefaultSearchParams()

	params.Query = q.Get("q")
	params.GenreSlug = q.Get("genre")

	if v := q.Get("min_price"); v != "" {
		if cents, err := strconv.ParseInt(v, 10, 64); err == nil {
			params.MinPriceCents = cents
		}
	}
	if v := q.Get("max_price"); v != "" {
		if cents, err := strconv.ParseInt(v, 10, 64); err == nil {
			params.MaxPriceCents = cents
		}
	}
	if q.Get("in_stock") == "true" {
		params.InStockOnly = true
	}

	if v := q.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			params.Limit = limit
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil {
			params.Offset = offset
		}
	}

	if v := q.Get("sort"); v != "" {
		params.SortBy = v
	}
	if v := q.Get("order"); v != "" {
		params.SortOrder = v
	}

	if q.Get("facets") == "true" {
		params.IncludeFacets = true
	}
	if q.Get("highlight") == "true" {
		params.Highlight = true
	}

	return params
}
