package service

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// round2 rounds half away from zero to cents. All amounts in the sale flow
// are non-negative, so this is round-half-up.
func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// atCents reports whether d carries no digits past the second decimal. Money
// and percentage columns are decimal(_,2); anything finer would be rounded by
// the database and break the stored totals.
func atCents(d decimal.Decimal) bool { return d.Equal(round2(d)) }

// LineTotal returns round2(qty × unitPrice × (1 − discountPct/100)).
func LineTotal(qty int, unitPrice, discountPct decimal.Decimal) decimal.Decimal {
	gross := unitPrice.Mul(decimal.NewFromInt(int64(qty)))
	return round2(gross.Mul(hundred.Sub(discountPct)).Div(hundred))
}

// SaleTotals is the header arithmetic of a sale.
type SaleTotals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	TaxRate  decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals sums already-rounded line totals and applies the sale-level
// discount and tax. The subtotal is the exact sum of the lines; only the tax
// is rounded. ok is false when the discount exceeds the subtotal.
func ComputeTotals(lines []decimal.Decimal, discount, taxRate decimal.Decimal) (t SaleTotals, ok bool) {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l)
	}
	if discount.GreaterThan(subtotal) {
		return SaleTotals{Subtotal: subtotal}, false
	}
	taxable := subtotal.Sub(discount)
	tax := round2(taxable.Mul(taxRate).Div(hundred))
	return SaleTotals{
		Subtotal: subtotal,
		Discount: discount,
		TaxRate:  taxRate,
		Tax:      tax,
		Total:    taxable.Add(tax),
	}, true
}
