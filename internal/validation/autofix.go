package validation

import (
	"fmt"

	"github.com/jonathan/quote-pipeline/internal/flags"
	"github.com/jonathan/quote-pipeline/internal/formula"
	"github.com/jonathan/quote-pipeline/internal/types"
)

// ruleSource is implemented by validators that carry a requirement table
type ruleSource interface {
	Rules() Rules
}

// AutoFix synthesizes the mandatory items the quote is missing and re-validates once.
// Synthesized items get the requirement's typical hours scaled by size when the
// requirement is per unit. A failed retry still returns the partially fixed quote,
// with the remaining blocking errors annotated in its validation warnings.
// The input quote is not modified.
func AutoFix(v Validator, q *types.Quote, size float64, f flags.Flags, rate float64) (*types.Quote, types.ValidationResult) {
	first := v.Validate(q, size, f)
	report := &types.AutoFixReport{Attempted: true}

	if first.Passed {
		report.Succeeded = true
		first.AutoFix = report
		return q.Clone(), first
	}

	fixed := q.Clone()
	if src, ok := v.(ruleSource); ok && len(first.MissingItems) > 0 {
		if rate <= 0 {
			rate = averageRate(q)
		}
		missing := map[string]bool{}
		for _, name := range first.MissingItems {
			missing[name] = true
		}
		for _, req := range src.Rules().Requirements {
			if !missing[req.Name] {
				continue
			}
			hours := formula.RoundHours(req.Typical(size))
			fixed.WorkItems = append(fixed.WorkItems, types.WorkItem{
				Name:       req.Name,
				Reasoning:  synthesizedReasoning(req, size, hours),
				Hours:      hours,
				HourlyRate: rate,
				Subtotal:   formula.LineSubtotal(hours, rate),
			})
			report.AddedItems = append(report.AddedItems, req.Name)
			fixed.Assumptions = append(fixed.Assumptions,
				fmt.Sprintf("auto-fix: added missing mandatory item %q (%.1f h at %.0f kr/h)", req.Name, hours, rate))
		}
	}

	fixed = formula.CalculateTotals(fixed)
	second := v.Validate(fixed, size, f)

	report.Succeeded = second.Passed
	if !second.Passed {
		report.Remaining = append([]string{}, second.Errors...)
		for _, e := range second.Errors {
			fixed.ValidationWarnings = append(fixed.ValidationWarnings, "auto-fix could not resolve: "+e)
		}
	}
	second.AutoFix = report
	return fixed, second
}

func synthesizedReasoning(req Requirement, size, hours float64) string {
	if req.PerUnit {
		return fmt.Sprintf("added by auto-fix: %.2f h per unit × %.1f = %.1f h", req.TypicalHours, size, hours)
	}
	return fmt.Sprintf("added by auto-fix: typical %.1f h", hours)
}

// averageRate is the hours-weighted rate of the existing items
func averageRate(q *types.Quote) float64 {
	hours := q.TotalHours()
	if hours <= 0 {
		return 0
	}
	cost := 0.0
	for _, item := range q.WorkItems {
		cost += item.Hours * item.HourlyRate
	}
	return formula.LineSubtotal(cost/hours, 1)
}
