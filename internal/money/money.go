// Package money computes order totals in integer cents. The cashier device
// and the backend must arrive at identical numbers, so the rules here are
// deliberately rigid: exact integer line totals, per-line tax rounded half
// away from zero, order tax as the sum of rounded line taxes.
package money

import (
	"errors"
	"math"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidPrice    = errors.New("unit price must not be negative")
	ErrInvalidTaxRate  = errors.New("tax rate must be between 0 and 100")
)

// Line is one (unit price, quantity, tax rate) input. TaxRate is a
// percentage, e.g. 8.25 means 8.25%.
type Line struct {
	UnitPriceCents int64
	Quantity       int64
	TaxRate        float64
}

type Totals struct {
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
}

// LineTotal is the exact integer product, no rounding involved.
func LineTotal(unitPriceCents, qty int64) int64 {
	return unitPriceCents * qty
}

// LineTax rounds half away from zero, matching Math.round on the
// nonnegative values the backend computes with.
func LineTax(lineTotalCents int64, taxRate float64) int64 {
	return int64(math.Round(float64(lineTotalCents) * taxRate / 100))
}

// Calculate validates every line and sums the order totals. Tax is the sum
// of per-line rounded taxes, never tax recomputed on the rounded subtotal.
func Calculate(lines []Line) (Totals, error) {
	var t Totals
	for _, l := range lines {
		if l.Quantity < 1 {
			return Totals{}, ErrInvalidQuantity
		}
		if l.UnitPriceCents < 0 {
			return Totals{}, ErrInvalidPrice
		}
		if l.TaxRate < 0 || l.TaxRate > 100 {
			return Totals{}, ErrInvalidTaxRate
		}
		lineTotal := LineTotal(l.UnitPriceCents, l.Quantity)
		t.SubtotalCents += lineTotal
		t.TaxCents += LineTax(lineTotal, l.TaxRate)
	}
	t.TotalCents = t.SubtotalCents + t.TaxCents
	return t, nil
}
