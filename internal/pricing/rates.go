package pricing

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// Shipping methods known to the default rate table.
const (
	MethodStandard = "standard"
	MethodExpress  = "express"
)

// RateTable holds the tax rate and flat shipping fee per shipping method.
type RateTable struct {
	TaxRate            decimal.Decimal            `json:"taxRate"`
	DefaultShippingFee decimal.Decimal            `json:"defaultShippingFee"`
	ShippingFees       map[string]decimal.Decimal `json:"shippingFees"`
}

// DefaultRateTable returns the built-in rates: 8% tax, free standard shipping
// and a 15.00 express premium.
func DefaultRateTable() *RateTable {
	return &RateTable{
		TaxRate:            decimal.RequireFromString("0.08"),
		DefaultShippingFee: decimal.Zero,
		ShippingFees: map[string]decimal.Decimal{
			MethodStandard: decimal.Zero,
			MethodExpress:  decimal.RequireFromString("15.00"),
		},
	}
}

// ShippingFee returns the flat fee for method, or the default fee when the
// method is not listed.
func (t *RateTable) ShippingFee(method string) decimal.Decimal {
	if fee, ok := t.ShippingFees[method]; ok {
		return fee
	}
	return t.DefaultShippingFee
}

// Validate checks the table for out of range values.
func (t *RateTable) Validate() error {
	if t.TaxRate.IsNegative() || t.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("tax rate must be in [0, 1): %s", t.TaxRate)
	}
	if t.DefaultShippingFee.IsNegative() {
		return fmt.Errorf("default shipping fee cannot be negative: %s", t.DefaultShippingFee)
	}
	for method, fee := range t.ShippingFees {
		if fee.IsNegative() {
			return fmt.Errorf("shipping fee for %q cannot be negative: %s", method, fee)
		}
	}
	return nil
}

// decodeRateTable parses and validates a JSON rate table.
func decodeRateTable(r io.Reader) (*RateTable, error) {
	var table RateTable
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&table); err != nil {
		return nil, fmt.Errorf("failed to decode rate table: %w", err)
	}
	if table.ShippingFees == nil {
		table.ShippingFees = map[string]decimal.Decimal{}
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate table: %w", err)
	}
	return &table, nil
}

// WithTaxRate returns a copy of the table taxed at raw, a decimal string.
func (t *RateTable) WithTaxRate(raw string) (*RateTable, error) {
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid tax rate %q: %w", raw, err)
	}

	fees := make(map[string]decimal.Decimal, len(t.ShippingFees))
	for method, fee := range t.ShippingFees {
		fees[method] = fee
	}
	table := &RateTable{
		TaxRate:            rate,
		DefaultShippingFee: t.DefaultShippingFee,
		ShippingFees:       fees,
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
