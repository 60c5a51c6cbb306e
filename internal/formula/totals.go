package formula

import (
	"math"

	"github.com/jonathan/quote-pipeline/internal/deduction"
	"github.com/jonathan/quote-pipeline/internal/types"
)

// LineSubtotal is round(amount × price) in whole kronor
func LineSubtotal(amount, price float64) float64 {
	return math.Round(amount * price)
}

// Summarize derives the summary from line quantities and prices, ignoring stored subtotals
func Summarize(q *types.Quote) types.Summary {
	var s types.Summary
	for _, item := range q.WorkItems {
		s.WorkCost += LineSubtotal(item.Hours, item.HourlyRate)
	}
	for _, m := range q.Materials {
		s.MaterialCost += LineSubtotal(m.Quantity, m.PricePerUnit)
	}
	for _, e := range q.Equipment {
		s.EquipmentCost += LineSubtotal(e.Quantity, e.PricePerUnit)
	}
	s.TotalBeforeVAT = s.WorkCost + s.MaterialCost + s.EquipmentCost
	s.VAT = math.Round(s.TotalBeforeVAT * types.VATRate)
	s.TotalWithVAT = s.TotalBeforeVAT + s.VAT
	s.DeductionAmount = deduction.Amount(s.WorkCost, q.DeductionRate, q.DeductionCap)
	s.CustomerPays = deduction.CustomerPays(s.TotalWithVAT, s.DeductionAmount)
	return s
}

// CalculateTotals returns a copy of q with every line subtotal and the summary recomputed.
// It is pure; calling it on its own output returns an identical quote.
func CalculateTotals(q *types.Quote) *types.Quote {
	out := q.Clone()
	for i := range out.WorkItems {
		out.WorkItems[i].Subtotal = LineSubtotal(out.WorkItems[i].Hours, out.WorkItems[i].HourlyRate)
	}
	for i := range out.Materials {
		out.Materials[i].Subtotal = LineSubtotal(out.Materials[i].Quantity, out.Materials[i].PricePerUnit)
	}
	for i := range out.Equipment {
		out.Equipment[i].Subtotal = LineSubtotal(out.Equipment[i].Quantity, out.Equipment[i].PricePerUnit)
	}
	out.Summary = Summarize(out)
	return out
}
