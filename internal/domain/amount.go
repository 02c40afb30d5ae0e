package domain

import "github.com/shopspring/decimal"

// TaxRate is the flat consumption tax applied to every invoice subtotal.
var TaxRate = decimal.New(10, -2)

// Amounts are integers in the smallest currency unit. Rounding is always
// floor, applied per line and again to the tax; the grand total is never
// rounded on its own so it always reconciles with the printed lines.

// LineAmount returns floor(qty * unitPrice).
func LineAmount(qty decimal.Decimal, unitPrice int64) int64 {
	return qty.Mul(decimal.NewFromInt(unitPrice)).Floor().IntPart()
}

// Subtotal sums the line amounts of items.
func Subtotal(items []InvoiceItem) int64 {
	var sum int64
	for _, it := range items {
		sum += LineAmount(it.Quantity, it.UnitPrice)
	}
	return sum
}

// Tax returns floor(subtotal * TaxRate).
func Tax(subtotal int64) int64 {
	return decimal.NewFromInt(subtotal).Mul(TaxRate).Floor().IntPart()
}

// Total returns Subtotal(items) + Tax(Subtotal(items)).
func Total(items []InvoiceItem) int64 {
	sub := Subtotal(items)
	return sub + Tax(sub)
}

// InvoiceTotals is the full breakdown shown on an invoice.
type InvoiceTotals struct {
	Subtotal int64
	Tax      int64
	Total    int64
}

// ComputeTotals fills in each item's Amount and returns the breakdown.
// The returned slice is a copy; items is not modified.
func ComputeTotals(items []InvoiceItem) ([]InvoiceItem, InvoiceTotals) {
	out := make([]InvoiceItem, len(items))
	for i, it := range items {
		it.Amount = LineAmount(it.Quantity, it.UnitPrice)
		out[i] = it
	}
	sub := Subtotal(out)
	tax := Tax(sub)
	return out, InvoiceTotals{Subtotal: sub, Tax: tax, Total: sub + tax}
}
