package mathguard

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/quote-pipeline/internal/deduction"
	"github.com/jonathan/quote-pipeline/internal/types"
)

func driftedQuote() *types.Quote {
	return &types.Quote{
		WorkItems: []types.WorkItem{
			{Name: "Kakelsättning vägg", Hours: 7.5, HourlyRate: 650, Subtotal: 5000},
			{Name: "VVS-installation", Hours: 16, HourlyRate: 650, Subtotal: 10400},
		},
		Materials: []types.Material{
			{Name: "Kakel vägg", Quantity: 14, PricePerUnit: 400, Subtotal: 5600},
			{Name: "Fix och fog", Quantity: 2, PricePerUnit: 450, Subtotal: 1000},
		},
		DeductionType: string(deduction.KindROT),
		DeductionRate: 0.5,
		DeductionCap:  deduction.ROTCap,
		Summary: types.Summary{
			WorkCost:       99999,
			TotalBeforeVAT: 120000,
		},
	}
}

func TestEnforce_RecomputesEverything(t *testing.T) {
	q := driftedQuote()
	out, corrections := Enforce(q)

	assert.Equal(t, 4875.0, out.WorkItems[0].Subtotal)
	assert.Equal(t, 10400.0, out.WorkItems[1].Subtotal)
	assert.Equal(t, 900.0, out.Materials[1].Subtotal)

	s := out.Summary
	assert.Equal(t, 15275.0, s.WorkCost)
	assert.Equal(t, 6500.0, s.MaterialCost)
	assert.Equal(t, 0.0, s.EquipmentCost)
	assert.Equal(t, 21775.0, s.TotalBeforeVAT)
	assert.Equal(t, 5444.0, s.VAT)
	assert.Equal(t, 27219.0, s.TotalWithVAT)
	assert.Equal(t, 7638.0, s.DeductionAmount)
	assert.Equal(t, 19581.0, s.CustomerPays)

	fields := make([]string, 0, len(corrections))
	for _, c := range corrections {
		fields = append(fields, c.Field)
	}
	assert.Equal(t, []string{
		"work_items[0].subtotal",
		"materials[1].subtotal",
		"summary.work_cost",
		"summary.material_cost",
		"summary.total_before_vat",
		"summary.vat",
		"summary.total_with_vat",
		"summary.deduction_amount",
		"summary.customer_pays",
	}, fields)

	require.NotEmpty(t, corrections)
	assert.Equal(t, 5000.0, corrections[0].Before)
	assert.Equal(t, 4875.0, corrections[0].After)
	assert.Equal(t, 2.5, corrections[0].DriftPercent)
	assert.Equal(t, corrections, out.Corrections)

	assert.Equal(t, 5000.0, q.WorkItems[0].Subtotal, "input is not modified")
}

func TestEnforce_Idempotent(t *testing.T) {
	once, first := Enforce(driftedQuote())
	require.NotEmpty(t, first)

	twice, second := Enforce(once)
	assert.Empty(t, second)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second pass changed the quote (-first +second):\n%s", diff)
	}
}

func TestEnforce_WithinEpsilon(t *testing.T) {
	q := &types.Quote{
		WorkItems: []types.WorkItem{{Name: "Målning", Hours: 2, HourlyRate: 500, Subtotal: 1000.004}},
	}
	q.Summary = types.Summary{WorkCost: 1000, TotalBeforeVAT: 1000, VAT: 250, TotalWithVAT: 1250, CustomerPays: 1250}

	_, corrections := Enforce(q)
	assert.Empty(t, corrections)
}

func TestEnforce_CustomerPaysNeverNegative(t *testing.T) {
	q := &types.Quote{
		WorkItems:     []types.WorkItem{{Name: "Städning", Hours: 10, HourlyRate: 400}},
		DeductionRate: 2,
	}
	out, _ := Enforce(q)
	assert.Equal(t, 8000.0, out.Summary.DeductionAmount)
	assert.Equal(t, 0.0, out.Summary.CustomerPays)
}

func TestDrift(t *testing.T) {
	tests := []struct {
		name     string
		before   float64
		after    float64
		expected float64
	}{
		{"no change", 100, 100, 0},
		{"from zero", 0, 50, 100},
		{"both zero", 0, 0, 0},
		{"quarter", 200, 150, 25},
		{"rounded to two decimals", 3, 4, 33.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, drift(tt.before, tt.after))
		})
	}
}

func TestCheck(t *testing.T) {
	q := driftedQuote()
	assert.Len(t, Check(q), 9)
	assert.Equal(t, 99999.0, q.Summary.WorkCost)
}
