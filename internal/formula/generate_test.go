package formula

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/quote-pipeline/internal/deduction"
	"github.com/jonathan/quote-pipeline/internal/jobs"
	"github.com/jonathan/quote-pipeline/internal/types"
)

func findMaterial(t *testing.T, materials []types.Material, name string) types.Material {
	t.Helper()
	for _, m := range materials {
		if m.Name == name {
			return m
		}
	}
	require.Failf(t, "material not found", "%s", name)
	return types.Material{}
}

func TestGenerateMaterials_PaintQuantityIndependentOfTier(t *testing.T) {
	def := jobs.Default().Find("painting", "")

	standard, warnings := GenerateMaterials(Params{UnitQty: 50, Area: 50, Quality: jobs.TierStandard}, def, nil)
	require.Empty(t, warnings)
	premium, _ := GenerateMaterials(Params{UnitQty: 50, Area: 50, Quality: jobs.TierPremium}, def, nil)

	std := findMaterial(t, standard, "Täckfärg")
	prem := findMaterial(t, premium, "Täckfärg")

	assert.Equal(t, 8.0, std.Quantity)
	assert.Equal(t, "l", std.Unit)
	assert.Equal(t, std.Quantity, prem.Quantity)
	assert.NotEqual(t, std.PricePerUnit, prem.PricePerUnit)
	assert.Equal(t, 150.0, std.PricePerUnit)
	assert.Equal(t, 260.0, prem.PricePerUnit)
	assert.Equal(t, 1200.0, std.Subtotal)
}

func TestGenerateMaterials_MalformedFormulaIsSkipped(t *testing.T) {
	def := jobs.JobDefinition{
		Materials: []jobs.MaterialCalc{
			{Name: "Broken", Formula: "area ** 2", Unit: "st", Prices: jobs.TierPrices{Standard: 10}},
			{Name: "Zero divisor", Formula: "area / (quantity - quantity)", Unit: "st", Prices: jobs.TierPrices{Standard: 10}},
			{Name: "Negative", Formula: "0 - area", Unit: "st", Prices: jobs.TierPrices{Standard: 10}},
			{Name: "Good", Formula: "area / 4", Unit: "st", Prices: jobs.TierPrices{Standard: 10}, RoundUp: true},
		},
	}

	materials, warnings := GenerateMaterials(Params{UnitQty: 10}, def, nil)
	require.Len(t, materials, 1)
	assert.Equal(t, "Good", materials[0].Name)
	assert.Equal(t, 3.0, materials[0].Quantity)
	assert.Len(t, warnings, 3)
}

func TestGenerateMaterials_AreaFallsBackToUnitQty(t *testing.T) {
	def := jobs.Default().Find("bathroom", "")
	materials, warnings := GenerateMaterials(Params{UnitQty: 6}, def, nil)
	require.Empty(t, warnings)

	assert.Equal(t, 14.0, findMaterial(t, materials, "Kakel vägg").Quantity)
	assert.Equal(t, 7.0, findMaterial(t, materials, "Klinker golv").Quantity)
	assert.Equal(t, 2.0, findMaterial(t, materials, "Tätskiktssystem").Quantity)
	assert.Equal(t, 1.0, findMaterial(t, materials, "Golvbrunn").Quantity)
}

func TestGenerateWorkItems(t *testing.T) {
	def := jobs.Default().Find("bathroom", "")

	items := GenerateWorkItems(Params{UnitQty: 6}, def)
	require.Len(t, items, len(def.StandardWorkItems))

	byName := map[string]types.WorkItem{}
	for _, item := range items {
		byName[item.Name] = item
		assert.Equal(t, def.HourlyRate.Typical, item.HourlyRate)
		assert.Equal(t, LineSubtotal(item.Hours, item.HourlyRate), item.Subtotal)
	}
	assert.Equal(t, 7.5, byName["Kakelsättning vägg"].Hours)
	assert.Equal(t, 6.0, byName["El-installation våtrum"].Hours)
	assert.Equal(t, 16.0, byName["VVS-installation"].Hours, "fixed items do not scale with size")
}

func TestGenerateWorkItems_UserRateAndMultipliers(t *testing.T) {
	def := jobs.Default().Find("bathroom", "")

	items := GenerateWorkItems(Params{UnitQty: 6, HourlyRate: 700, Complexity: jobs.ComplexityComplex, Region: "Stockholm"}, def)
	for _, item := range items {
		assert.Equal(t, 700.0, item.HourlyRate)
	}
	// 1.0 h/m2 × 6 × (13/9) × 1.1 = 9.53
	for _, item := range items {
		if item.Name == "El-installation våtrum" {
			assert.Equal(t, 9.5, item.Hours)
			assert.Contains(t, item.Reasoning, "multiplier")
		}
	}
}

func TestMultiplier(t *testing.T) {
	bathroom := jobs.Default().Find("bathroom", "")
	garden := jobs.Default().Find("gardening", "")

	tests := []struct {
		name     string
		params   Params
		def      jobs.JobDefinition
		expected float64
	}{
		{"defaults", Params{}, bathroom, 1.0},
		{"simple", Params{Complexity: jobs.ComplexitySimple}, bathroom, 7.0 / 9.0},
		{"premium", Params{Quality: jobs.TierPremium}, bathroom, 1.15},
		{"region", Params{Region: " göteborg "}, bathroom, 1.05},
		{"unknown region", Params{Region: "Kiruna"}, bathroom, 1.0},
		{"winter indoor", Params{Season: "winter"}, bathroom, 1.0},
		{"winter outdoor", Params{Season: "winter"}, garden, 1.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Multiplier(tt.params, tt.def), 1e-9)
		})
	}
}

func TestRoundQuantity(t *testing.T) {
	assert.Equal(t, 14.0, RoundQuantity(6*2.2, true))
	assert.Equal(t, 8.0, RoundQuantity(50/6.5, true))
	assert.Equal(t, 1.0, RoundQuantity(4*2.5/10, true))
	assert.Equal(t, 7.69, RoundQuantity(50/6.5, false))
}

func TestCalculateTotals(t *testing.T) {
	q := &types.Quote{
		WorkItems: []types.WorkItem{
			{Name: "A", Hours: 40, HourlyRate: 500, Subtotal: 1},
			{Name: "B", Hours: 40, HourlyRate: 500},
		},
		Materials:     []types.Material{{Name: "M", Quantity: 3, PricePerUnit: 333.3}},
		Equipment:     []types.Material{{Name: "E", Quantity: 1, PricePerUnit: 500}},
		DeductionRate: deduction.ROTElevatedRate,
		DeductionCap:  deduction.ROTCap,
	}

	out := CalculateTotals(q)
	assert.Equal(t, 1.0, q.WorkItems[0].Subtotal, "input is not mutated")
	assert.Equal(t, 20000.0, out.WorkItems[0].Subtotal)
	assert.Equal(t, 1000.0, out.Materials[0].Subtotal)

	s := out.Summary
	assert.Equal(t, 40000.0, s.WorkCost)
	assert.Equal(t, 1000.0, s.MaterialCost)
	assert.Equal(t, 500.0, s.EquipmentCost)
	assert.Equal(t, 41500.0, s.TotalBeforeVAT)
	assert.Equal(t, 10375.0, s.VAT)
	assert.Equal(t, 51875.0, s.TotalWithVAT)
	assert.Equal(t, 20000.0, s.DeductionAmount)
	assert.Equal(t, 31875.0, s.CustomerPays)

	again := CalculateTotals(out)
	if diff := cmp.Diff(out, again); diff != "" {
		t.Errorf("CalculateTotals not idempotent (-first +second):\n%s", diff)
	}
}
