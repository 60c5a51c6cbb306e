package formula

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/quote-pipeline/internal/jobs"
	"github.com/jonathan/quote-pipeline/internal/types"
)

// Params are the resolved project parameters the generators work from
type Params struct {
	UnitQty    float64
	Quantity   float64
	Area       float64
	Complexity jobs.Complexity
	Quality    jobs.Tier
	Region     string
	Season     string
	HourlyRate float64
}

// quality tiers also change how long finishing takes
var qualityMultipliers = map[jobs.Tier]float64{
	jobs.TierBudget:   0.95,
	jobs.TierStandard: 1.0,
	jobs.TierPremium:  1.15,
}

var regionMultipliers = map[string]float64{
	"stockholm": 1.1,
	"göteborg":  1.05,
	"goteborg":  1.05,
	"malmö":     1.0,
	"malmo":     1.0,
}

// seasonMultipliers only apply to outdoor work
var seasonMultipliers = map[string]float64{
	"autumn": 1.05,
	"winter": 1.1,
}

// Multiplier combines the complexity, quality, region and season factors for def
func Multiplier(p Params, def jobs.JobDefinition) float64 {
	m := 1.0
	if normal := def.TimePerUnit.Normal; normal > 0 {
		if bound := def.TimePerUnit.For(p.Complexity); bound > 0 {
			m *= bound / normal
		}
	}
	if q, ok := qualityMultipliers[p.Quality]; ok {
		m *= q
	}
	if r, ok := regionMultipliers[strings.ToLower(strings.TrimSpace(p.Region))]; ok {
		m *= r
	}
	if def.Category == jobs.CategoryGardening {
		if s, ok := seasonMultipliers[strings.ToLower(strings.TrimSpace(p.Season))]; ok {
			m *= s
		}
	}
	return m
}

// ResolveRate returns the user's own rate when set, else the job's typical rate
func ResolveRate(p Params, def jobs.JobDefinition) float64 {
	if p.HourlyRate > 0 {
		return p.HourlyRate
	}
	return def.HourlyRate.Typical
}

// GenerateWorkItems builds one work item per standard work item of def
func GenerateWorkItems(p Params, def jobs.JobDefinition) []types.WorkItem {
	mult := Multiplier(p, def)
	rate := ResolveRate(p, def)

	items := make([]types.WorkItem, 0, len(def.StandardWorkItems))
	for _, std := range def.StandardWorkItems {
		base := std.TypicalHours
		reasoning := fmt.Sprintf("%.2f h", std.TypicalHours)
		if std.PerUnit {
			base *= p.UnitQty
			reasoning = fmt.Sprintf("%.2f h/%s × %.1f %s", std.TypicalHours, def.UnitType, p.UnitQty, def.UnitType)
		}
		hours := RoundHours(base * mult)
		if mult != 1 {
			reasoning += fmt.Sprintf(", multiplier %.2f", mult)
		}
		items = append(items, types.WorkItem{
			Name:       std.Name,
			Reasoning:  reasoning,
			Hours:      hours,
			HourlyRate: rate,
			Subtotal:   LineSubtotal(hours, rate),
		})
	}
	return items
}

// GenerateMaterials evaluates every material formula of def.
// A formula that fails to parse or evaluate is skipped and reported in the returned warnings.
func GenerateMaterials(p Params, def jobs.JobDefinition, logger *zap.Logger) ([]types.Material, []string) {
	if logger == nil {
		logger = zap.NewNop()
	}
	vars := Vars{UnitQty: p.UnitQty, Quantity: p.Quantity, Area: p.Area}
	if vars.Quantity <= 0 {
		vars.Quantity = p.UnitQty
	}
	if vars.Area <= 0 {
		vars.Area = p.UnitQty
	}

	var materials []types.Material
	var warnings []string
	for _, calc := range def.Materials {
		qty, err := Evaluate(calc.Formula, vars)
		if err != nil {
			logger.Warn("skipping material formula",
				zap.String("material", calc.Name),
				zap.String("formula", calc.Formula),
				zap.Error(err))
			warnings = append(warnings, fmt.Sprintf("material %q skipped: %v", calc.Name, err))
			continue
		}
		qty = RoundQuantity(qty, calc.RoundUp)
		if qty <= 0 {
			warnings = append(warnings, fmt.Sprintf("material %q skipped: formula %q gave %.2f", calc.Name, calc.Formula, qty))
			continue
		}
		price := calc.Prices.For(p.Quality)
		materials = append(materials, types.Material{
			Name:         calc.Name,
			Quantity:     qty,
			Unit:         calc.Unit,
			PricePerUnit: price,
			Subtotal:     LineSubtotal(qty, price),
		})
	}
	return materials, warnings
}

// RoundHours rounds to a tenth of an hour
func RoundHours(h float64) float64 {
	return math.Round(h*10) / 10
}

// RoundQuantity applies a material's rounding rule after snapping q to six decimals,
// so 6*2.2 rounds up to 14 and not 15.
func RoundQuantity(q float64, roundUp bool) float64 {
	snapped := math.Round(q*1e6) / 1e6
	if roundUp {
		return math.Ceil(snapped)
	}
	return math.Round(snapped*100) / 100
}
