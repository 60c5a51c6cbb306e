// Package validation checks quotes against the business rules of their trade family.
package validation

import (
	"fmt"

	"github.com/jonathan/quote-pipeline/internal/classify"
	"github.com/jonathan/quote-pipeline/internal/flags"
	"github.com/jonathan/quote-pipeline/internal/jobs"
	"github.com/jonathan/quote-pipeline/internal/types"
)

// Violation types
const (
	ViolationMissingItem      = "missing_item"
	ViolationUnderHoured      = "under_houred"
	ViolationBelowMinCost     = "below_min_cost"
	ViolationBelowRecommended = "below_recommended_cost"
	ViolationMissingMaterial  = "missing_material"
	ViolationBelowRateFloor   = "below_rate_floor"
	ViolationItemShare        = "item_share"
	ViolationDemolitionShare  = "demolition_share"
	ViolationTooFewItems      = "too_few_items"
	ViolationLowMaterialShare = "low_material_share"
	ViolationNoWorkItems      = "no_work_items"
	ViolationZeroCost         = "zero_cost"
)

// Validator checks a quote against one trade family's rules.
// Validate is pure; the same quote always yields the same result.
type Validator interface {
	Family() jobs.Category
	Validate(q *types.Quote, size float64, f flags.Flags) types.ValidationResult
}

// New returns the validator for def's family, or the generic validator
func New(def jobs.JobDefinition) Validator {
	rules, ok := RulesFor(def.Category)
	if !ok {
		return &GenericValidator{}
	}
	return &TradeValidator{rules: rules, def: def}
}

// TradeValidator applies a family's requirement table
type TradeValidator struct {
	rules Rules
	def   jobs.JobDefinition
}

// Family returns the trade family
func (v *TradeValidator) Family() jobs.Category {
	return v.rules.Family
}

// Rules returns the requirement table in use
func (v *TradeValidator) Rules() Rules {
	return v.rules
}

// Validate runs the checks in order: mandatory items, minimum hours, cost floor,
// required materials, rate floor, then proportion rules.
func (v *TradeValidator) Validate(q *types.Quote, size float64, f flags.Flags) types.ValidationResult {
	c := newCollector(v.rules.Family)

	v.checkMandatory(c, q, size)
	v.checkCost(c, q, size)
	v.checkMaterials(c, q, f)
	checkRate(c, q, v.rules.RateFloor)
	v.checkProportions(c, q, f)

	return c.result()
}

// checkMandatory covers presence (blocking) and minimum hours (warning)
func (v *TradeValidator) checkMandatory(c *collector, q *types.Quote, size float64) {
	for _, req := range v.rules.Requirements {
		hours := 0.0
		found := false
		for _, item := range q.WorkItems {
			if req.Matches(item.Name) {
				found = true
				hours += item.Hours
			}
		}
		if !found {
			c.missing = append(c.missing, req.Name)
			c.add(types.Violation{
				Type:     ViolationMissingItem,
				Severity: types.SeverityError,
				Details:  fmt.Sprintf("missing mandatory item %q", req.Name),
				Item:     req.Name,
			})
			continue
		}
		if minimum := req.Threshold(size); hours+1e-9 < minimum {
			c.underHoured = append(c.underHoured, req.Name)
			c.add(types.Violation{
				Type:     ViolationUnderHoured,
				Severity: types.SeverityWarning,
				Details:  fmt.Sprintf("%q has %.1f h, expected at least %.1f h", req.Name, hours, minimum),
				Item:     req.Name,
			})
		}
	}
}

func (v *TradeValidator) checkCost(c *collector, q *types.Quote, size float64) {
	if size <= 0 {
		return
	}
	total := q.Summary.TotalBeforeVAT
	unit := v.def.UnitType
	if minimum := v.rules.MinCostPerUnit * size; total < minimum {
		msg := fmt.Sprintf("total %.0f kr is below the minimum %.0f kr (%.0f kr/%s)", total, minimum, v.rules.MinCostPerUnit, unit)
		c.totalIssue = &types.TotalIssue{Actual: total, Minimum: minimum, Blocking: true, Message: msg}
		c.add(types.Violation{Type: ViolationBelowMinCost, Severity: types.SeverityError, Details: msg})
		return
	}
	if rec := v.rules.RecommendedCostPerUnit * size; total < rec {
		msg := fmt.Sprintf("total %.0f kr is below the recommended %.0f kr (%.0f kr/%s)", total, rec, v.rules.RecommendedCostPerUnit, unit)
		c.totalIssue = &types.TotalIssue{Actual: total, Minimum: rec, Blocking: false, Message: msg}
		c.add(types.Violation{Type: ViolationBelowRecommended, Severity: types.SeverityWarning, Details: msg})
	}
}

func (v *TradeValidator) checkMaterials(c *collector, q *types.Quote, f flags.Flags) {
	present := map[string]bool{}
	for _, m := range q.Materials {
		present[flags.MaterialCategory(m.Name)] = true
	}
	for _, req := range v.rules.Materials {
		if present[req.Category] || f.Supplies(req.Category) {
			continue
		}
		c.add(types.Violation{
			Type:     ViolationMissingMaterial,
			Severity: types.SeverityWarning,
			Details:  fmt.Sprintf("no %s in the material list", req.Label),
			Item:     req.Category,
		})
	}
}

func (v *TradeValidator) checkProportions(c *collector, q *types.Quote, f flags.Flags) {
	rules := v.def.Proportions
	work := q.Summary.WorkCost

	if rules.MinWorkItems > 0 && len(q.WorkItems) < rules.MinWorkItems {
		c.add(types.Violation{
			Type:     ViolationTooFewItems,
			Severity: types.SeverityWarning,
			Details:  fmt.Sprintf("only %d work items, expected at least %d", len(q.WorkItems), rules.MinWorkItems),
		})
	}
	if work <= 0 {
		return
	}

	demolition := 0.0
	for _, item := range q.WorkItems {
		share := item.Subtotal / work
		if rules.MaxSingleItemShare > 0 && share > rules.MaxSingleItemShare {
			c.add(types.Violation{
				Type:     ViolationItemShare,
				Severity: types.SeverityWarning,
				Details:  fmt.Sprintf("%q is %.0f%% of the work cost (max %.0f%%)", item.Name, share*100, rules.MaxSingleItemShare*100),
				Item:     item.Name,
			})
		}
		if classify.Classify(item.Name, item.Description, string(v.def.Category)).Domain == classify.DomainDemolition {
			demolition += item.Subtotal
		}
	}
	if rules.DemolitionMaxShare > 0 && demolition/work > rules.DemolitionMaxShare {
		c.add(types.Violation{
			Type:     ViolationDemolitionShare,
			Severity: types.SeverityWarning,
			Details:  fmt.Sprintf("demolition is %.0f%% of the work cost (max %.0f%%)", demolition/work*100, rules.DemolitionMaxShare*100),
		})
	}

	total := q.Summary.TotalBeforeVAT
	if v.def.MaterialRatio > 0 && total > 0 && !f.CustomerSuppliesMaterial {
		share := q.Summary.MaterialCost / total
		if share < v.def.MaterialRatio/2 {
			c.add(types.Violation{
				Type:     ViolationLowMaterialShare,
				Severity: types.SeverityWarning,
				Details:  fmt.Sprintf("materials are %.0f%% of the total, expected about %.0f%%", share*100, v.def.MaterialRatio*100),
			})
		}
	}
}

// checkRate compares workCost / totalHours with the family floor (blocking)
func checkRate(c *collector, q *types.Quote, floor float64) {
	hours := q.TotalHours()
	if floor <= 0 || hours <= 0 {
		return
	}
	effective := q.Summary.WorkCost / hours
	if effective < floor {
		c.add(types.Violation{
			Type:     ViolationBelowRateFloor,
			Severity: types.SeverityError,
			Details:  fmt.Sprintf("effective hourly rate %.0f kr is below the floor %.0f kr", effective, floor),
		})
	}
}

// GenericValidator only requires work items and a non-zero cost
type GenericValidator struct{}

// Family returns the generic category
func (v *GenericValidator) Family() jobs.Category {
	return jobs.CategoryGeneric
}

// Validate checks presence of items and a non-zero total
func (v *GenericValidator) Validate(q *types.Quote, _ float64, _ flags.Flags) types.ValidationResult {
	c := newCollector(jobs.CategoryGeneric)
	if len(q.WorkItems) == 0 && len(q.Materials) == 0 && len(q.Equipment) == 0 {
		c.add(types.Violation{Type: ViolationNoWorkItems, Severity: types.SeverityError, Details: "quote has no line items"})
	}
	if q.Summary.TotalBeforeVAT <= 0 {
		c.add(types.Violation{Type: ViolationZeroCost, Severity: types.SeverityError, Details: "quote total is zero"})
	}
	return c.result()
}

// collector accumulates findings in check order
type collector struct {
	family      jobs.Category
	violations  types.Violations
	missing     []string
	underHoured []string
	totalIssue  *types.TotalIssue
}

func newCollector(family jobs.Category) *collector {
	return &collector{family: family}
}

func (c *collector) add(v types.Violation) {
	c.violations.Violations = append(c.violations.Violations, v)
}

func (c *collector) result() types.ValidationResult {
	errs := c.violations.Errors()
	missing := c.missing
	if missing == nil {
		missing = []string{}
	}
	under := c.underHoured
	if under == nil {
		under = []string{}
	}
	violations := c.violations.Violations
	if violations == nil {
		violations = []types.Violation{}
	}
	return types.ValidationResult{
		Family:           string(c.family),
		Passed:           len(errs) == 0,
		Errors:           errs,
		Warnings:         c.violations.Warnings(),
		MissingItems:     missing,
		UnderHouredItems: under,
		TotalIssue:       c.totalIssue,
		Violations:       violations,
	}
}
