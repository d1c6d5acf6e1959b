package repository

import (
	"context"
	"fmt"
	"time"

	"sleek-shop/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// dashboardRepository implements DashboardRepository over the order and product tables.
type dashboardRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDashboardRepository creates a new PostgreSQL-backed dashboard repository.
func NewDashboardRepository(pool *pgxpool.Pool, logger zerolog.Logger) DashboardRepository {
	return &dashboardRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "dashboard").Logger(),
	}
}

// Summary totals revenue, orders, products and distinct customers. Customers
// are the signed-in users that placed at least one order.
func (r *dashboardRepository) Summary(ctx context.Context) (*model.DashboardSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(o.total), 0),
			COUNT(*),
			(SELECT COUNT(*) FROM products),
			COUNT(DISTINCT o.user_id)
		FROM orders o
	`

	var summary model.DashboardSummary
	err := r.pool.QueryRow(ctx, query).Scan(
		&summary.TotalRevenue,
		&summary.TotalOrders,
		&summary.TotalProducts,
		&summary.TotalCustomers,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to compute dashboard summary")
		return nil, fmt.Errorf("failed to compute dashboard summary: %w", err)
	}

	return &summary, nil
}

// DailyRevenue sums order totals per UTC day for orders placed at or after
// since, oldest day first. Days without orders are omitted.
func (r *dashboardRepository) DailyRevenue(ctx context.Context, since time.Time) ([]model.RevenuePoint, error) {
	query := `
		SELECT TO_CHAR(day, 'Dy'), TO_CHAR(day, 'YYYY-MM-DD'), value
		FROM (
			SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, SUM(total) AS value
			FROM orders
			WHERE created_at >= $1
			GROUP BY 1
		) daily
		ORDER BY day
	`

	return collect(ctx, r, "daily revenue", query, func(row pgx.CollectableRow) (model.RevenuePoint, error) {
		var p model.RevenuePoint
		err := row.Scan(&p.Name, &p.Date, &p.Value)
		return p, err
	}, since)
}

// CategorySales sums units sold per product category. Items of removed or
// uncategorised products are counted under "Uncategorized".
func (r *dashboardRepository) CategorySales(ctx context.Context) ([]model.CategorySales, error) {
	query := `
		SELECT COALESCE(p.category, 'Uncategorized') AS name, SUM(oi.quantity)::bigint AS value
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		GROUP BY 1
		ORDER BY value DESC, name
	`

	return collect(ctx, r, "category sales", query, func(row pgx.CollectableRow) (model.CategorySales, error) {
		var c model.CategorySales
		err := row.Scan(&c.Name, &c.Value)
		return c, err
	})
}

// TopProducts returns the limit best selling catalog products by units.
func (r *dashboardRepository) TopProducts(ctx context.Context, limit int) ([]model.TopProduct, error) {
	query := `
		SELECT p.id, p.name, SUM(oi.quantity)::bigint AS sales, SUM(oi.subtotal) AS revenue
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		GROUP BY p.id, p.name
		ORDER BY sales DESC, p.id
		LIMIT $1
	`

	return collect(ctx, r, "top products", query, func(row pgx.CollectableRow) (model.TopProduct, error) {
		var p model.TopProduct
		err := row.Scan(&p.ID, &p.Name, &p.Sales, &p.Revenue)
		return p, err
	}, limit)
}

// RecentOrders returns the limit most recently placed orders.
func (r *dashboardRepository) RecentOrders(ctx context.Context, limit int) ([]model.RecentOrder, error) {
	query := `
		SELECT order_number, COALESCE(NULLIF(customer_name, ''), customer_email, ''), total, status
		FROM orders
		ORDER BY created_at DESC, id
		LIMIT $1
	`

	return collect(ctx, r, "recent orders", query, func(row pgx.CollectableRow) (model.RecentOrder, error) {
		var o model.RecentOrder
		err := row.Scan(&o.ID, &o.Customer, &o.Amount, &o.Status)
		return o, err
	}, limit)
}

// collect runs a report query and scans every row with fn. An empty result is
// an empty, non-nil slice.
func collect[T any](ctx context.Context, r *dashboardRepository, report, query string, fn pgx.RowToFunc[T], args ...any) ([]T, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("report", report).Msg("failed to query dashboard report")
		return nil, fmt.Errorf("failed to query %s: %w", report, err)
	}

	result, err := pgx.CollectRows(rows, fn)
	if err != nil {
		r.logger.Error().Err(err).Str("report", report).Msg("failed to scan dashboard report")
		return nil, fmt.Errorf("failed to scan %s: %w", report, err)
	}
	if result == nil {
		result = []T{}
	}

	return result, nil
}
