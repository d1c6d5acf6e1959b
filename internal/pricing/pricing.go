package pricing

import (
	"context"

	"github.com/shopspring/decimal"
)

// Line is one priced line fed to the calculator.
type Line struct {
	Price    decimal.Decimal
	Quantity int
}

// Breakdown is the result of pricing an order.
type Breakdown struct {
	Subtotal     decimal.Decimal
	ShippingCost decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
}

// Loader defines the interface for loading a rate table.
type Loader interface {
	// Load reads a JSON rate table from the given location.
	Load(ctx context.Context, path string) (*RateTable, error)
}
