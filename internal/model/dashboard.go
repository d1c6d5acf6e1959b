package model

import "github.com/shopspring/decimal"

// DashboardSummary holds the headline figures of the admin dashboard.
type DashboardSummary struct {
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalOrders    int             `json:"totalOrders"`
	TotalProducts  int             `json:"totalProducts"`
	TotalCustomers int             `json:"totalCustomers"`
}

// RevenuePoint is the order total of one calendar day (UTC).
type RevenuePoint struct {
	Name  string          `json:"name"` // abbreviated weekday, e.g. "Mon"
	Date  string          `json:"date"` // YYYY-MM-DD
	Value decimal.Decimal `json:"value"`
}

// CategorySales is the number of units sold in one product category.
type CategorySales struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// TopProduct ranks a product by units sold.
type TopProduct struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

// RecentOrder is the dashboard row of a recently placed order.
type RecentOrder struct {
	ID       string            `json:"id"` // order number
	Customer string            `json:"customer"`
	Amount   decimal.Decimal   `json:"amount"`
	Status   FulfillmentStatus `json:"status"`
}
