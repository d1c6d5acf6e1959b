package service

import (
	"context"

	"sleek-shop/internal/model"
)

// ProductService defines operations for product management.
type ProductService interface {
	// GetAll retrieves active products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder validates, prices and persists a checkout. caller may be nil
	// for guest checkout. A non-empty idempotencyKey makes retries return the
	// order created by the first request.
	CreateOrder(ctx context.Context, req *model.OrderRequest, caller *model.Identity, idempotencyKey string) (*model.Order, error)

	// ListOrders returns one page of the administrative order listing.
	ListOrders(ctx context.Context, filter model.OrderFilter) (*model.OrderPage, error)

	// ListUserOrders returns the caller's own orders, newest first.
	ListUserOrders(ctx context.Context, caller *model.Identity) ([]model.Order, error)

	// GetOrder retrieves an order by ID or order number.
	GetOrder(ctx context.Context, ref string) (*model.Order, error)

	// GetUserOrder retrieves an order by ID or order number on behalf of a
	// signed-in customer.
	GetUserOrder(ctx context.Context, caller *model.Identity, ref string) (*model.Order, error)

	// UpdateStatus sets the fulfillment status of the order with the given ID.
	UpdateStatus(ctx context.Context, id string, status string) (*model.Order, error)

	// UpdatePaymentStatus sets the payment status of the order with the given ID.
	UpdatePaymentStatus(ctx context.Context, id string, paymentStatus string) (*model.Order, error)

	// Stats computes the dashboard aggregates.
	Stats(ctx context.Context) (*model.OrderStats, error)
}

// DashboardService defines the admin dashboard reports.
type DashboardService interface {
	// Summary returns the headline totals.
	Summary(ctx context.Context) (*model.DashboardSummary, error)

	// WeeklyRevenue returns the revenue per day over the last seven days.
	WeeklyRevenue(ctx context.Context) ([]model.RevenuePoint, error)

	// CategorySales returns the units sold per product category.
	CategorySales(ctx context.Context) ([]model.CategorySales, error)

	// TopProducts returns the five best selling products.
	TopProducts(ctx context.Context) ([]model.TopProduct, error)

	// RecentOrders returns the five most recent orders.
	RecentOrders(ctx context.Context) ([]model.RecentOrder, error)
}

// IdempotencyStore remembers which order a client-supplied key produced.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

// clampLimit bounds a page size to [1, maxLimit], using fallback when unset.
func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	return min(limit, maxLimit)
}
