// Package mathguard is the final authority over quote arithmetic.
package mathguard

import (
	"fmt"
	"math"

	"github.com/jonathan/quote-pipeline/internal/formula"
	"github.com/jonathan/quote-pipeline/internal/types"
)

// Epsilon is the largest difference in kronor tolerated before a value is overwritten
const Epsilon = 0.005

// Enforce recomputes every line subtotal and the summary from the current line items,
// the deduction rate and the deduction cap. Values that differ from the recomputed
// figure by more than Epsilon are overwritten and logged as corrections.
// Enforce does not modify q; running it on its own output yields no corrections.
func Enforce(q *types.Quote) (*types.Quote, []types.Correction) {
	out := q.Clone()
	var corrections []types.Correction

	check := func(field string, stored *float64, want float64) {
		if math.Abs(*stored-want) > Epsilon {
			corrections = append(corrections, types.Correction{
				Field:        field,
				Before:       *stored,
				After:        want,
				DriftPercent: drift(*stored, want),
			})
			*stored = want
		}
	}

	for i := range out.WorkItems {
		item := &out.WorkItems[i]
		check(fmt.Sprintf("work_items[%d].subtotal", i), &item.Subtotal, formula.LineSubtotal(item.Hours, item.HourlyRate))
	}
	for i := range out.Materials {
		m := &out.Materials[i]
		check(fmt.Sprintf("materials[%d].subtotal", i), &m.Subtotal, formula.LineSubtotal(m.Quantity, m.PricePerUnit))
	}
	for i := range out.Equipment {
		e := &out.Equipment[i]
		check(fmt.Sprintf("equipment[%d].subtotal", i), &e.Subtotal, formula.LineSubtotal(e.Quantity, e.PricePerUnit))
	}

	want := formula.Summarize(out)
	s := &out.Summary
	check("summary.work_cost", &s.WorkCost, want.WorkCost)
	check("summary.material_cost", &s.MaterialCost, want.MaterialCost)
	check("summary.equipment_cost", &s.EquipmentCost, want.EquipmentCost)
	check("summary.total_before_vat", &s.TotalBeforeVAT, want.TotalBeforeVAT)
	check("summary.vat", &s.VAT, want.VAT)
	check("summary.total_with_vat", &s.TotalWithVAT, want.TotalWithVAT)
	check("summary.deduction_amount", &s.DeductionAmount, want.DeductionAmount)
	check("summary.customer_pays", &s.CustomerPays, want.CustomerPays)

	out.Corrections = append(out.Corrections, corrections...)
	return out, corrections
}

// drift is the relative change in percent; a change away from zero counts as 100%
func drift(before, after float64) float64 {
	if before == 0 {
		if after == 0 {
			return 0
		}
		return 100
	}
	return math.Round(math.Abs(after-before)/math.Abs(before)*10000) / 100
}

// Check reports the arithmetic inconsistencies of q without correcting them
func Check(q *types.Quote) []types.Correction {
	_, corrections := Enforce(q)
	return corrections
}
