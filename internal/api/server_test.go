package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhavenapp/bookhaven-server/internal/auth"
	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/http/response"
	"github.com/bookhavenapp/bookhaven-server/internal/id"
	"github.com/bookhavenapp/bookhaven-server/internal/ratelimit"
	"github.com/bookhavenapp/bookhaven-server/internal/search"
	"github.com/bookhavenapp/bookhaven-server/internal/service"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

const testKeyHex = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// setupTestServer creates a test server with all dependencies over a
// temporary store and search index.
func setupTestServer(t *testing.T) (server *Server, cleanup func()) {
	t.Helper()

	// Generous limit so only the rate limit tests trip it.
	return setupTestServerWithLimiter(t, ratelimit.New(1000, 1000))
}

func setupTestServerWithLimiter(t *testing.T, limiter *ratelimit.KeyedRateLimiter) (server *Server, cleanup func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "bookhaven-api-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.New(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)

	idx, err := search.NewSearchIndex(search.Options{
		DataPath: filepath.Join(tmpDir, "search"),
		Logger:   logger,
	})
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(testKeyHex, 15*time.Minute)
	require.NoError(t, err)

	authService := service.NewAuthService(s, tokenService, logger)
	catalogService := service.NewCatalogService(s, idx, logger)
	cartService := service.NewCartService(s, logger)
	orderService := service.NewOrderService(s, logger)
	statsService := service.NewStatsService(s, logger)

	server = NewServer(s, authService, catalogService, cartService, orderService, statsService, limiter, logger)

	cleanup = func() {
		limiter.Stop()
		_ = idx.Close()
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return server, cleanup
}

// createTestUserWithToken creates a user with the given role and returns
// the user and a valid access token.
func createTestUserWithToken(t *testing.T, server *Server, email string, role domain.Role) (*domain.User, string) {
	t.Helper()

	ctx := context.Background()

	userID, err := id.Generate("user")
	require.NoError(t, err)

	now := time.Now()
	user := &domain.User{
		Record: domain.Record{
			ID:        userID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email: email,
		Name:  "Test User",
		Role:  role,
	}

	err = server.store.Users.Create(ctx, userID, user)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(testKeyHex, 15*time.Minute)
	require.NoError(t, err)

	token, err := tokenService.GenerateAccessToken(user)
	require.NoError(t, err)

	return user, token
}

// createTestBook inserts a book directly into the store and index.
func createTestBook(t *testing.T, server *Server, title string, priceCents int64, stock int) *domain.Book {
	t.Helper()

	book, err := server.catalogService.CreateBook(context.Background(), service.CreateBookRequest{
		Title:         title,
		Authors:       []string{"Test Author"},
		Genre:         "Fiction",
		PriceCents:    priceCents,
		StockQuantity: stock,
	})
	require.NoError(t, err)

	return book
}

// doJSON issues a request with an optional JSON body and bearer token.
func doJSON(server *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()

	var envelope response.Envelope
	err := json.Unmarshal(w.Body.Bytes(), &envelope)
	require.NoError(t, err)
	return envelope
}

func TestHealthCheck(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := doJSON(server, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Success)
	assert.NotNil(t, envelope.Data)
}

func TestServer_Routes(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{
			name:           "health check",
			method:         http.MethodGet,
			path:           "/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "list books is public",
			method:         http.MethodGet,
			path:           "/api/v1/books",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "search is public",
			method:         http.MethodGet,
			path:           "/api/v1/books/search?q=anything",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "cart requires auth",
			method:         http.MethodGet,
			path:           "/api/v1/cart",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "orders require auth",
			method:         http.MethodGet,
			path:           "/api/v1/orders",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "admin requires auth",
			method:         http.MethodGet,
			path:           "/api/v1/admin/stats",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "not found",
			method:         http.MethodGet,
			path:           "/api/v1/nonexistent",
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(server, tt.method, tt.path, "", nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestServer_JSONResponse(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	createTestBook(t, server, "The Hobbit", 1299, 5)

	w := doJSON(server, http.MethodGet, "/api/v1/books", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Success)
	assert.NotNil(t, envelope.Data)
	assert.Empty(t, envelope.Error)
}

func TestAdmin_ForbiddenForCustomer(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, token := createTestUserWithToken(t, server, "customer@example.com", domain.RoleCustomer)

	w := doJSON(server, http.MethodGet, "/api/v1/admin/stats", token, nil)

	assert.Equal(t, http.StatusForbidden, w.Code)

	envelope := decodeEnvelope(t, w)
	assert.False(t, envelope.Success)
}

func TestAdmin_AllowedForAdmin(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	_, token := createTestUserWithToken(t, server, "admin@example.com", domain.RoleAdmin)

	w := doJSON(server, http.MethodGet, "/api/v1/admin/stats", token, nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_InvalidTokenTreatedAsAnonymous(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := doJSON(server, http.MethodGet, "/api/v1/cart", "not-a-valid-token", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimit_LoginEndpoint(t *testing.T) {
	server, cleanup := setupTestServerWithLimiter(t, ratelimit.New(1, 2))
	defer cleanup()

	codes := make([]int, 0, 4)
	for range 4 {
		w := doJSON(server, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"email":    "ghost@example.com",
			"password": "whatever123",
		})
		codes = append(codes, w.Code)
	}

	assert.Contains(t, codes, http.StatusTooManyRequests)
}
