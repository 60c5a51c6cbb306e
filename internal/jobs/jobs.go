// Package jobs provides the static catalog of job definitions the quote pipeline is built around.
package jobs

import (
	"strings"

	"github.com/jonathan/quote-pipeline/internal/classify"
	"github.com/jonathan/quote-pipeline/internal/deduction"
)

// Category is the trade family a job belongs to
type Category string

// Trade families with a dedicated definition and validator
const (
	CategoryBathroom   Category = "bathroom"
	CategoryKitchen    Category = "kitchen"
	CategoryPainting   Category = "painting"
	CategoryCleaning   Category = "cleaning"
	CategoryGardening  Category = "gardening"
	CategoryElectrical Category = "electrical"
	CategoryGeneric    Category = "generic"
)

// RoomScoped reports whether the category is named after a room rather than a trade.
// Trade categories win keyword ties against rooms.
func (c Category) RoomScoped() bool {
	return c == CategoryBathroom || c == CategoryKitchen
}

// Unit is the size unit a job is priced in
type Unit string

// Size units
const (
	UnitSquareMeter Unit = "m2"
	UnitPiece       Unit = "st"
	UnitMeter       Unit = "lm"
	UnitRoom        Unit = "rum"
)

// Complexity scales hours through the job's time-per-unit bounds
type Complexity string

// Complexity levels
const (
	ComplexitySimple  Complexity = "simple"
	ComplexityNormal  Complexity = "normal"
	ComplexityComplex Complexity = "complex"
)

// ParseComplexity maps free text to a Complexity; unknown input is normal
func ParseComplexity(s string) Complexity {
	switch Complexity(strings.ToLower(strings.TrimSpace(s))) {
	case ComplexitySimple:
		return ComplexitySimple
	case ComplexityComplex:
		return ComplexityComplex
	default:
		return ComplexityNormal
	}
}

// Tier is the material quality level
type Tier string

// Quality tiers
const (
	TierBudget   Tier = "budget"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

// ParseTier maps free text to a Tier; unknown input is standard
func ParseTier(s string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierBudget:
		return TierBudget
	case TierPremium:
		return TierPremium
	default:
		return TierStandard
	}
}

// TimeBounds is the expected total hours per unit at each complexity
type TimeBounds struct {
	Simple  float64 `json:"simple"`
	Normal  float64 `json:"normal"`
	Complex float64 `json:"complex"`
}

// For returns the bound for complexity c
func (b TimeBounds) For(c Complexity) float64 {
	switch c {
	case ComplexitySimple:
		return b.Simple
	case ComplexityComplex:
		return b.Complex
	default:
		return b.Normal
	}
}

// RateRange is the hourly rate span for a trade in SEK excluding VAT
type RateRange struct {
	Min     float64 `json:"min"`
	Typical float64 `json:"typical"`
	Max     float64 `json:"max"`
}

// StandardWorkItem is a work step the formula engine generates for a job
type StandardWorkItem struct {
	Name         string  `json:"name"`
	Mandatory    bool    `json:"mandatory"`
	PerUnit      bool    `json:"per_unit"`
	TypicalHours float64 `json:"typical_hours"`
}

// TierPrices holds a material's price per unit at each quality tier
type TierPrices struct {
	Budget   float64 `json:"budget"`
	Standard float64 `json:"standard"`
	Premium  float64 `json:"premium"`
}

// For returns the price at tier t, falling back to the standard price
func (p TierPrices) For(t Tier) float64 {
	switch t {
	case TierBudget:
		if p.Budget > 0 {
			return p.Budget
		}
	case TierPremium:
		if p.Premium > 0 {
			return p.Premium
		}
	}
	return p.Standard
}

// MaterialCalc describes how to derive a material quantity from the job size
type MaterialCalc struct {
	Name    string     `json:"name"`
	Formula string     `json:"formula"`
	Unit    string     `json:"unit"`
	Prices  TierPrices `json:"prices"`
	RoundUp bool       `json:"round_up"`
}

// ProportionRules bound how the work cost may be distributed across items
type ProportionRules struct {
	MaxSingleItemShare float64 `json:"max_single_item_share"`
	DemolitionMaxShare float64 `json:"demolition_max_share"`
	MinWorkItems       int     `json:"min_work_items"`
}

// Defaults are applied when the request leaves a parameter unset
type Defaults struct {
	UnitQty    float64    `json:"unit_qty"`
	Complexity Complexity `json:"complexity"`
	Quality    Tier       `json:"quality"`
}

// Standard is a reference time range for one kind of work.
// A ComponentUnknown or SurfaceNone value matches any item value.
type Standard struct {
	ID         string             `json:"id"`
	Domain     classify.Domain    `json:"domain"`
	Component  classify.Component `json:"component"`
	Surface    classify.Surface   `json:"surface"`
	MinPerUnit float64            `json:"min_per_unit"`
	MaxPerUnit float64            `json:"max_per_unit"`
	PerUnit    bool               `json:"per_unit"`
}

// Range returns the valid hours span for qty units
func (s Standard) Range(qty float64) (lo, hi float64) {
	if !s.PerUnit {
		return s.MinPerUnit, s.MaxPerUnit
	}
	return s.MinPerUnit * qty, s.MaxPerUnit * qty
}

func (s Standard) specificity() int {
	n := 0
	if s.Component != classify.ComponentUnknown {
		n++
	}
	if s.Surface != classify.SurfaceNone {
		n++
	}
	return n
}

func (s Standard) matches(c classify.Classification) bool {
	if s.Domain != c.Domain {
		return false
	}
	if s.Component != classify.ComponentUnknown && s.Component != c.Component {
		return false
	}
	if s.Surface != classify.SurfaceNone && s.Surface != c.Surface {
		return false
	}
	return true
}

// Size carries the size parameters of a request
type Size struct {
	Area     float64
	Quantity float64
	Rooms    float64
	Length   float64
}

// JobDefinition is the immutable template for one job category.
// Definitions are shared across requests and must not be mutated.
type JobDefinition struct {
	JobType           string             `json:"job_type"`
	Category          Category           `json:"category"`
	Name              string             `json:"name"`
	Keywords          []string           `json:"keywords"`
	UnitType          Unit               `json:"unit_type"`
	TimePerUnit       TimeBounds         `json:"time_per_unit"`
	HourlyRate        RateRange          `json:"hourly_rate"`
	MaterialRatio     float64            `json:"material_ratio"`
	StandardWorkItems []StandardWorkItem `json:"standard_work_items"`
	Materials         []MaterialCalc     `json:"material_calculations"`
	Proportions       ProportionRules    `json:"proportion_rules"`
	Deduction         deduction.Kind     `json:"applicable_deduction"`
	Defaults          Defaults           `json:"defaults"`
	Standards         []Standard         `json:"standards"`
}

// MatchStandard returns the most specific standard matching c. Earlier entries win ties.
func (d JobDefinition) MatchStandard(c classify.Classification) (Standard, bool) {
	var best Standard
	bestSpec := -1
	for _, s := range d.Standards {
		if !s.matches(c) {
			continue
		}
		if score := s.specificity(); score > bestSpec {
			best = s
			bestSpec = score
		}
	}
	return best, bestSpec >= 0
}

// SizeFor picks the size parameter that matches the job's unit type. Zero means unset.
func (d JobDefinition) SizeFor(s Size) float64 {
	switch d.UnitType {
	case UnitSquareMeter:
		return s.Area
	case UnitRoom:
		return s.Rooms
	case UnitMeter:
		return s.Length
	default:
		return s.Quantity
	}
}

