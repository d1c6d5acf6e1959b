package service

import (
	"context"
	"fmt"
	"time"

	"sleek-shop/internal/model"
	"sleek-shop/internal/repository"

	"github.com/rs/zerolog"
)

const (
	revenueWindowDays = 7
	dashboardRowLimit = 5
)

// dashboardService implements DashboardService.
type dashboardService struct {
	repo   repository.DashboardRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(repo repository.DashboardRepository, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		logger: logger.With().Str("service", "dashboard").Logger(),
		now:    time.Now,
	}
}

// Summary returns the headline totals.
func (s *dashboardService) Summary(ctx context.Context) (*model.DashboardSummary, error) {
	summary, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get dashboard summary: %w", err)
	}
	return summary, nil
}

// WeeklyRevenue returns the revenue per day for orders placed in the last
// seven days.
func (s *dashboardService) WeeklyRevenue(ctx context.Context) ([]model.RevenuePoint, error) {
	since := s.now().UTC().AddDate(0, 0, -revenueWindowDays)

	points, err := s.repo.DailyRevenue(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly revenue: %w", err)
	}

	s.logger.Debug().Time("since", since).Int("days", len(points)).Msg("computed weekly revenue")
	return points, nil
}

// CategorySales returns the units sold per product category.
func (s *dashboardService) CategorySales(ctx context.Context) ([]model.CategorySales, error) {
	sales, err := s.repo.CategorySales(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get category sales: %w", err)
	}
	return sales, nil
}

// TopProducts returns the best selling products.
func (s *dashboardService) TopProducts(ctx context.Context) ([]model.TopProduct, error) {
	products, err := s.repo.TopProducts(ctx, dashboardRowLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}
	return products, nil
}

// RecentOrders returns the most recently placed orders.
func (s *dashboardService) RecentOrders(ctx context.Context) ([]model.RecentOrder, error) {
	orders, err := s.repo.RecentOrders(ctx, dashboardRowLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent orders: %w", err)
	}
	return orders, nil
}
