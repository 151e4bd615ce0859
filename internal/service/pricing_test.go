package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLineTotal(t *testing.T) {
	cases := []struct {
		name     string
		qty      int
		unit     string
		discount string
		want     string
	}{
		{"no discount", 3, "10.00", "0", "30.00"},
		{"ten percent", 2, "9.99", "10", "17.98"},   // 17.982
		{"half rounds up", 1, "0.05", "50", "0.03"}, // 0.025
		{"full discount", 4, "12.50", "100", "0.00"},
		{"fractional percent", 3, "1.10", "12.5", "2.89"}, // 2.8875
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LineTotal(tc.qty, d(tc.unit), d(tc.discount))
			assert.True(t, d(tc.want).Equal(got), "want %s got %s", tc.want, got)
		})
	}
}

func TestComputeTotals(t *testing.T) {
	lines := []decimal.Decimal{d("17.98"), d("0.03"), d("30.00")}

	totals, ok := ComputeTotals(lines, d("8.01"), d("21"))
	assert.True(t, ok)
	assert.True(t, d("48.01").Equal(totals.Subtotal))
	assert.True(t, d("8.40").Equal(totals.Tax)) // 40.00 * 0.21
	assert.True(t, d("48.40").Equal(totals.Total))
	assert.True(t, totals.Total.Equal(totals.Subtotal.Sub(totals.Discount).Add(totals.Tax)))
}

func TestComputeTotals_TaxRoundsHalfUp(t *testing.T) {
	totals, ok := ComputeTotals([]decimal.Decimal{d("0.50")}, decimal.Zero, d("5"))
	assert.True(t, ok)
	assert.True(t, d("0.03").Equal(totals.Tax)) // 0.025
	assert.True(t, d("0.53").Equal(totals.Total))
}

func TestComputeTotals_DiscountExceedsSubtotal(t *testing.T) {
	_, ok := ComputeTotals([]decimal.Decimal{d("5.00")}, d("5.01"), decimal.Zero)
	assert.False(t, ok)

	totals, ok := ComputeTotals([]decimal.Decimal{d("5.00")}, d("5.00"), d("10"))
	assert.True(t, ok)
	assert.True(t, totals.Total.IsZero())
}
