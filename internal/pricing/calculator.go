package pricing

import (
	"sleek-shop/internal/model"

	"github.com/shopspring/decimal"
)

// currencyPlaces is the number of decimal places kept for money amounts.
const currencyPlaces = 2

// MaxAmount is the largest amount a NUMERIC(10,2) money column holds.
var MaxAmount = decimal.RequireFromString("99999999.99")

// Calculator derives order totals from line items and a rate table.
type Calculator struct {
	rates *RateTable
}

// NewCalculator creates a calculator over rates. A nil table selects DefaultRateTable.
func NewCalculator(rates *RateTable) *Calculator {
	if rates == nil {
		rates = DefaultRateTable()
	}
	return &Calculator{rates: rates}
}

// Rates returns the table the calculator prices with.
func (c *Calculator) Rates() *RateTable {
	return c.rates
}

// Calculate prices lines shipped by method. A non-nil shippingOverride replaces
// the table's fee for method.
func (c *Calculator) Calculate(lines []Line, method string, shippingOverride *decimal.Decimal) (Breakdown, error) {
	if len(lines) == 0 {
		return Breakdown{}, model.ErrEmptyOrder
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			return Breakdown{}, model.ErrInvalidQuantity
		}
		subtotal = subtotal.Add(LineSubtotal(line.Price, line.Quantity))
	}

	shipping := c.rates.ShippingFee(method)
	if shippingOverride != nil {
		if shippingOverride.IsNegative() {
			return Breakdown{}, model.ErrNegativeShipping
		}
		shipping = *shippingOverride
	}
	shipping = shipping.Round(currencyPlaces)

	tax := subtotal.Add(shipping).Mul(c.rates.TaxRate).Round(currencyPlaces)

	// Every other amount is bounded by the total.
	total := subtotal.Add(shipping).Add(tax)
	if total.GreaterThan(MaxAmount) {
		return Breakdown{}, model.ErrAmountTooLarge
	}

	return Breakdown{
		Subtotal:     subtotal,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        total,
	}, nil
}

// LineSubtotal returns price * quantity rounded to currency precision.
func LineSubtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity))).Round(currencyPlaces)
}
