package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookhavenapp/bookhaven-server/internal/domain"
	"github.com/bookhavenapp/bookhaven-server/internal/store"
)

// StatsService computes the admin dashboard overview.
type StatsService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(s *store.Store, logger *slog.Logger) *StatsService {
	return &StatsService{
		store:  s,
		logger: logger,
	}
}

// Overview is the admin dashboard summary.
type Overview struct {
	TotalOrders       int   `json:"total_orders"`
	TotalRevenueCents int64 `json:"total_revenue_cents"`
	PendingOrders     int   `json:"pending_orders"`
	DeliveredOrders   int   `json:"delivered_orders"`
	TotalBooks        int   `json:"total_books"`
	OutOfStockBooks   int   `json:"out_of_stock_books"`
}

// GetOverview aggregates order and catalog counts. Admin only.
// Cancelled orders are excluded from revenue.
func (s *StatsService) GetOverview(ctx context.Context, actor *domain.User) (*Overview, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	overview := &Overview{}

	for order, err := range s.store.Orders.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		overview.TotalOrders++
		if order.Status != domain.StatusCancelled {
			overview.TotalRevenueCents += order.TotalCents
		}
		switch order.Status {
		case domain.StatusPending:
			overview.PendingOrders++
		case domain.StatusDelivered:
			overview.DeliveredOrders++
		}
	}

	for book, err := range s.store.Books.List(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list books: %w", err)
		}
		overview.TotalBooks++
		if book.StockQuantity == 0 {
			overview.OutOfStockBooks++
		}
	}

	return overview, nil
}
