package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order represents one checkout transaction.
type Order struct {
	ID                   uuid.UUID         `json:"id" db:"id"`
	OrderNumber          string            `json:"orderNumber" db:"order_number"`
	UserID               *int64            `json:"userId" db:"user_id"`
	CustomerEmail        *string           `json:"customerEmail" db:"customer_email"`
	CustomerName         string            `json:"customerName" db:"customer_name"`
	CustomerPhone        string            `json:"customerPhone" db:"customer_phone"`
	ShippingAddressLine1 string            `json:"shippingAddressLine1" db:"shipping_address_line1"`
	ShippingAddressLine2 *string           `json:"shippingAddressLine2" db:"shipping_address_line2"`
	ShippingCity         string            `json:"shippingCity" db:"shipping_city"`
	ShippingState        string            `json:"shippingState" db:"shipping_state"`
	ShippingZip          string            `json:"shippingZip" db:"shipping_zip"`
	ShippingCountry      string            `json:"shippingCountry" db:"shipping_country"`
	Subtotal             decimal.Decimal   `json:"subtotal" db:"subtotal"`
	ShippingCost         decimal.Decimal   `json:"shippingCost" db:"shipping_cost"`
	Tax                  decimal.Decimal   `json:"tax" db:"tax"`
	Total                decimal.Decimal   `json:"total" db:"total"`
	ShippingMethod       string            `json:"shippingMethod" db:"shipping_method"`
	PaymentMethod        string            `json:"paymentMethod" db:"payment_method"`
	BkashNumber          *string           `json:"bkashNumber" db:"bkash_number"`
	BkashTransactionID   *string           `json:"bkashTransactionId" db:"bkash_transaction_id"`
	Status               FulfillmentStatus `json:"status" db:"status"`
	PaymentStatus        PaymentStatus     `json:"paymentStatus" db:"payment_status"`
	Notes                *string           `json:"notes" db:"notes"`
	CreatedAt            time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time         `json:"updatedAt" db:"updated_at"`
	Items                []OrderItem       `json:"items"`
}

// OrderItem is a line item snapshot. Name, SKU and price are copied from the
// catalogue when the order is placed and never follow later catalogue edits.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"orderId" db:"order_id"`
	ProductID   *int64          `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	ProductSKU  *string         `json:"productSku" db:"product_sku"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
	Position    int             `json:"position" db:"position"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`

	// Product is nil when the referenced product has since been removed.
	Product *ProductSummary `json:"product"`
}

// OrderRequest represents the checkout payload.
type OrderRequest struct {
	Items                []OrderItemRequest `json:"items"`
	CustomerName         string             `json:"customerName"`
	CustomerPhone        string             `json:"customerPhone"`
	CustomerEmail        *string            `json:"customerEmail,omitempty"`
	ShippingAddressLine1 string             `json:"shippingAddressLine1"`
	ShippingAddressLine2 *string            `json:"shippingAddressLine2,omitempty"`
	ShippingCity         string             `json:"shippingCity"`
	ShippingState        string             `json:"shippingState"`
	ShippingZip          string             `json:"shippingZip"`
	ShippingCountry      string             `json:"shippingCountry"`
	ShippingMethod       string             `json:"shippingMethod"`
	ShippingCost         *decimal.Decimal   `json:"shippingCost,omitempty"`
	PaymentMethod        string             `json:"paymentMethod"`
	BkashNumber          *string            `json:"bkashNumber,omitempty"`
	BkashTransactionID   *string            `json:"bkashTransactionId,omitempty"`
	Notes                *string            `json:"notes,omitempty"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// StatusUpdateRequest is the body of PATCH /orders/{id}/status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// PaymentStatusUpdateRequest is the body of PATCH /orders/{id}/payment-status.
type PaymentStatusUpdateRequest struct {
	PaymentStatus string `json:"paymentStatus"`
}

// OrderFilter narrows the administrative order listing.
type OrderFilter struct {
	Page   int
	Limit  int
	Status string
	Search string
}

// Offset returns the row offset of the filter's page.
func (f OrderFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes the page count for total rows at limit rows per page.
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

// OrderPage is a page of the administrative order listing.
type OrderPage struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// OrderStats holds the dashboard aggregates.
type OrderStats struct {
	TotalOrders     int             `json:"totalOrders"`
	CompletedOrders int             `json:"completedOrders"`
	PendingOrders   int             `json:"pendingOrders"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
}
