package repository

import (
	"context"
	"time"

	"sleek-shop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves active products ordered by name with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByIDs retrieves the active products among ids.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByReference retrieves an order whose ID or order number equals ref.
	GetByReference(ctx context.Context, ref string) (*model.Order, error)

	// GetForUpdate reads an order header and locks its row until tx ends.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// UpdateStatuses writes both status columns of order within tx.
	UpdateStatuses(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// List returns one page of orders matching filter and the total match count.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error)

	// ListByUser returns every order placed by userID, newest first.
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)

	// Stats computes the dashboard aggregates.
	Stats(ctx context.Context) (*model.OrderStats, error)
}

// DashboardRepository computes the admin dashboard reports.
type DashboardRepository interface {
	// Summary totals revenue, orders, products and distinct customers.
	Summary(ctx context.Context) (*model.DashboardSummary, error)

	// DailyRevenue sums order totals per UTC day for orders placed at or after since.
	DailyRevenue(ctx context.Context, since time.Time) ([]model.RevenuePoint, error)

	// CategorySales sums units sold per product category.
	CategorySales(ctx context.Context) ([]model.CategorySales, error)

	// TopProducts returns the limit best selling products by units.
	TopProducts(ctx context.Context, limit int) ([]model.TopProduct, error)

	// RecentOrders returns the limit most recently placed orders.
	RecentOrders(ctx context.Context, limit int) ([]model.RecentOrder, error)
}
