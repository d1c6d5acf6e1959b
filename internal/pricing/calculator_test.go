package pricing

import (
	"errors"
	"testing"

	"sleek-shop/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, expected string, actual decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "%s: expected %s, got %s", field, expected, actual)
}

func TestCalculator_Calculate(t *testing.T) {
	calc := NewCalculator(nil)

	tests := []struct {
		name           string
		lines          []Line
		method         string
		override       *decimal.Decimal
		expectSubtotal string
		expectShipping string
		expectTax      string
		expectTotal    string
	}{
		{
			name:           "Single item standard shipping",
			lines:          []Line{{Price: dec("45.99"), Quantity: 1}},
			method:         MethodStandard,
			expectSubtotal: "45.99",
			expectShipping: "0",
			expectTax:      "3.68",
			expectTotal:    "49.67",
		},
		{
			name:           "Express shipping premium",
			lines:          []Line{{Price: dec("10.00"), Quantity: 2}},
			method:         MethodExpress,
			expectSubtotal: "20.00",
			expectShipping: "15.00",
			expectTax:      "2.80",
			expectTotal:    "37.80",
		},
		{
			name: "Multiple lines",
			lines: []Line{
				{Price: dec("19.99"), Quantity: 3},
				{Price: dec("5.25"), Quantity: 2},
			},
			method:         MethodStandard,
			expectSubtotal: "70.47",
			expectShipping: "0",
			expectTax:      "5.64",
			expectTotal:    "76.11",
		},
		{
			name:           "Override replaces table fee",
			lines:          []Line{{Price: dec("100.00"), Quantity: 1}},
			method:         MethodExpress,
			override:       func() *decimal.Decimal { d := dec("7.50"); return &d }(),
			expectSubtotal: "100.00",
			expectShipping: "7.50",
			expectTax:      "8.60",
			expectTotal:    "116.10",
		},
		{
			name:           "Explicit zero override is honoured",
			lines:          []Line{{Price: dec("10.00"), Quantity: 1}},
			method:         MethodExpress,
			override:       func() *decimal.Decimal { d := decimal.Zero; return &d }(),
			expectSubtotal: "10.00",
			expectShipping: "0",
			expectTax:      "0.80",
			expectTotal:    "10.80",
		},
		{
			name:           "Unknown method uses default fee",
			lines:          []Line{{Price: dec("12.50"), Quantity: 4}},
			method:         "drone",
			expectSubtotal: "50.00",
			expectShipping: "0",
			expectTax:      "4.00",
			expectTotal:    "54.00",
		},
		{
			name:           "Sub-cent amounts do not drift",
			lines:          []Line{{Price: dec("0.10"), Quantity: 3}},
			method:         MethodStandard,
			expectSubtotal: "0.30",
			expectShipping: "0",
			expectTax:      "0.02",
			expectTotal:    "0.32",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := calc.Calculate(tt.lines, tt.method, tt.override)

			require.NoError(t, err)
			assertMoney(t, tt.expectSubtotal, b.Subtotal, "subtotal")
			assertMoney(t, tt.expectShipping, b.ShippingCost, "shipping")
			assertMoney(t, tt.expectTax, b.Tax, "tax")
			assertMoney(t, tt.expectTotal, b.Total, "total")
			assert.True(t, b.Total.Equal(b.Subtotal.Add(b.ShippingCost).Add(b.Tax)))
		})
	}
}

func TestCalculator_Calculate_Errors(t *testing.T) {
	calc := NewCalculator(DefaultRateTable())
	negative := dec("-1.00")

	tests := []struct {
		name     string
		lines    []Line
		override *decimal.Decimal
		expected error
	}{
		{
			name:     "Empty lines",
			lines:    nil,
			expected: model.ErrEmptyOrder,
		},
		{
			name:     "Zero quantity",
			lines:    []Line{{Price: dec("1.00"), Quantity: 0}},
			expected: model.ErrInvalidQuantity,
		},
		{
			name:     "Total above column maximum",
			lines:    []Line{{Price: MaxAmount, Quantity: 1}},
			expected: model.ErrAmountTooLarge,
		},
		{
			name:     "Shipping override above column maximum",
			lines:    []Line{{Price: dec("1.00"), Quantity: 1}},
			override: func() *decimal.Decimal { d := dec("100000000.00"); return &d }(),
			expected: model.ErrAmountTooLarge,
		},
		{
			name:     "Negative shipping override",
			lines:    []Line{{Price: dec("1.00"), Quantity: 1}},
			override: &negative,
			expected: model.ErrNegativeShipping,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Calculate(tt.lines, MethodStandard, tt.override)

			require.Error(t, err)
			assert.Equal(t, tt.expected, err)
			assert.True(t, errors.Is(err, model.ErrValidation))
		})
	}
}

func TestCalculator_CustomRates(t *testing.T) {
	rates := &RateTable{
		TaxRate:            dec("0.15"),
		DefaultShippingFee: dec("4.99"),
		ShippingFees: map[string]decimal.Decimal{
			"overnight": dec("25.00"),
		},
	}
	calc := NewCalculator(rates)

	b, err := calc.Calculate([]Line{{Price: dec("10.00"), Quantity: 1}}, "overnight", nil)
	require.NoError(t, err)
	assertMoney(t, "25.00", b.ShippingCost, "shipping")
	assertMoney(t, "5.25", b.Tax, "tax")
	assertMoney(t, "40.25", b.Total, "total")

	b, err = calc.Calculate([]Line{{Price: dec("10.00"), Quantity: 1}}, "", nil)
	require.NoError(t, err)
	assertMoney(t, "4.99", b.ShippingCost, "shipping")
	assert.Same(t, rates, calc.Rates())
}

func TestLineSubtotal(t *testing.T) {
	assertMoney(t, "91.98", LineSubtotal(dec("45.99"), 2), "line subtotal")
	assertMoney(t, "0.00", LineSubtotal(dec("0.00"), 5), "line subtotal")
}

func TestRateTable_WithTaxRate(t *testing.T) {
	base := DefaultRateTable()

	table, err := base.WithTaxRate("0.15")
	require.NoError(t, err)
	assertMoney(t, "0.15", table.TaxRate, "tax rate")
	assertMoney(t, "15.00", table.ShippingFee(MethodExpress), "express")
	assertMoney(t, "0.08", base.TaxRate, "original tax rate")

	table.ShippingFees[MethodExpress] = dec("99")
	assertMoney(t, "15.00", base.ShippingFee(MethodExpress), "original fees are not shared")

	_, err = base.WithTaxRate("abc")
	assert.Error(t, err)

	_, err = base.WithTaxRate("-0.01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tax rate must be in [0, 1)")
}
