package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/quote-pipeline/internal/classify"
	"github.com/jonathan/quote-pipeline/internal/deduction"
)

func TestRegistry_Find(t *testing.T) {
	r := Default()

	tests := []struct {
		name        string
		hint        string
		description string
		expected    Category
	}{
		{"exact category", "bathroom", "", CategoryBathroom},
		{"exact job type", "kitchen_renovation", "", CategoryKitchen},
		{"swedish hint", "Badrumsrenovering", "", CategoryBathroom},
		{"hint wins over description", "målning", "Renovera badrummet", CategoryPainting},
		{"description only", "", "Vi vill ha flyttstädning av vår lägenhet", CategoryCleaning},
		{"garden", "", "Klippa häcken och gräsmattan", CategoryGardening},
		{"electrical whole word", "", "Byta el i hallen", CategoryElectrical},
		{"kakel is not el", "", "Lite kakel som ska bytas", CategoryBathroom},
		{"room outscores a trade", "", "Badrum med ny el och kakel", CategoryBathroom},
		{"painting in the kitchen", "", "Måla om väggarna i köket", CategoryPainting},
		{"moving-out cleaning with kitchen", "", "Flyttstädning av lägenhet med kök", CategoryCleaning},
		{"outlets in the kitchen", "", "Byta eluttag i köket", CategoryElectrical},
		{"electrical work in the bathroom", "", "Badrum med ny el", CategoryElectrical},
		{"tie between rooms goes to catalog order", "", "Badrum och kök", CategoryBathroom},
		{"tie between trades goes to catalog order", "", "Måla och städa", CategoryPainting},
		{"unmatched falls back", "snöskottning", "Skotta taket", CategoryGeneric},
		{"empty input falls back", "", "", CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Find(tt.hint, tt.description)
			assert.Equal(t, tt.expected, got.Category)
		})
	}
}

func TestRegistry_All(t *testing.T) {
	all := Default().All()
	require.Len(t, all, 7)
	assert.Equal(t, CategoryGeneric, all[len(all)-1].Category)

	seen := map[Category]bool{}
	for _, d := range all {
		assert.False(t, seen[d.Category], "duplicate category %s", d.Category)
		seen[d.Category] = true
		assert.NotEmpty(t, d.JobType)
		assert.Greater(t, d.HourlyRate.Typical, 0.0)
		assert.Greater(t, d.Defaults.UnitQty, 0.0)
	}
}

func TestCatalog_StandardWorkItemsMatchTheirStandards(t *testing.T) {
	// every standard must be reachable from at least one generated work item name
	for _, d := range Default().All() {
		for _, std := range d.Standards {
			if std.ID == "malning_tak" {
				continue
			}
			found := false
			for _, item := range d.StandardWorkItems {
				c := classify.Classify(item.Name, "", string(d.Category))
				if got, ok := d.MatchStandard(c); ok && got.ID == std.ID {
					found = true
					break
				}
			}
			assert.True(t, found, "%s: standard %s has no generated item", d.JobType, std.ID)
		}
	}
}

func TestCatalog_Deductions(t *testing.T) {
	r := Default()
	assert.Equal(t, deduction.KindROT, r.Find("bathroom", "").Deduction)
	assert.Equal(t, deduction.KindRUT, r.Find("cleaning", "").Deduction)
	assert.Equal(t, deduction.KindRUT, r.Find("gardening", "").Deduction)
	assert.Equal(t, deduction.KindNone, r.Fallback().Deduction)
}

func TestJobDefinition_MatchStandard(t *testing.T) {
	d := Default().Find("bathroom", "")

	tests := []struct {
		name     string
		c        classify.Classification
		expected string
		ok       bool
	}{
		{"wall tiles", classify.Classification{Domain: classify.DomainTiling, Component: classify.ComponentTiles, Surface: classify.SurfaceWall}, "kakel_vagg", true},
		{"floor tiles", classify.Classification{Domain: classify.DomainTiling, Component: classify.ComponentTiles, Surface: classify.SurfaceFloor}, "klinker_golv", true},
		{"wildcard component", classify.Classification{Domain: classify.DomainPlumbing, Component: classify.ComponentFixture, Surface: classify.SurfaceNone}, "vvs", true},
		{"tiles without surface", classify.Classification{Domain: classify.DomainTiling, Component: classify.ComponentTiles, Surface: classify.SurfaceNone}, "", false},
		{"other domain", classify.Classification{Domain: classify.DomainPainting, Component: classify.ComponentPaint, Surface: classify.SurfaceWall}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.MatchStandard(tt.c)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got.ID)
		})
	}
}

func TestStandard_Range(t *testing.T) {
	d := Default().Find("bathroom", "")
	std, ok := d.MatchStandard(classify.Classification{Domain: classify.DomainTiling, Component: classify.ComponentTiles, Surface: classify.SurfaceWall})
	require.True(t, ok)
	require.Equal(t, "kakel_vagg", std.ID)

	lo, hi := std.Range(6)
	assert.InDelta(t, 6.0, lo, 1e-9)
	assert.InDelta(t, 9.0, hi, 1e-9)

	fixed, ok := d.MatchStandard(classify.Classification{Domain: classify.DomainPlumbing, Component: classify.ComponentPipes, Surface: classify.SurfaceNone})
	require.True(t, ok)
	require.Equal(t, "vvs", fixed.ID)
	lo, hi = fixed.Range(6)
	assert.Equal(t, 8.0, lo)
	assert.Equal(t, 24.0, hi)
}

func TestJobDefinition_SizeFor(t *testing.T) {
	size := Size{Area: 6, Quantity: 3, Rooms: 2, Length: 4}
	assert.Equal(t, 6.0, Default().Find("bathroom", "").SizeFor(size))
	assert.Equal(t, 3.0, Default().Find("electrical", "").SizeFor(size))
	assert.Equal(t, 3.0, Default().Fallback().SizeFor(size))
}

func TestParseModifiers(t *testing.T) {
	assert.Equal(t, ComplexityComplex, ParseComplexity(" Complex "))
	assert.Equal(t, ComplexityNormal, ParseComplexity("whatever"))
	assert.Equal(t, TierPremium, ParseTier("premium"))
	assert.Equal(t, TierStandard, ParseTier(""))

	prices := TierPrices{Standard: 100}
	assert.Equal(t, 100.0, prices.For(TierPremium), "missing tier price falls back to standard")
}

func TestRegistry_FindByDescriptionPicksDeduction(t *testing.T) {
	d := Default().Find("", "Flyttstädning av lägenhet med kök")
	assert.Equal(t, "cleaning", d.JobType)
	assert.Equal(t, deduction.KindRUT, d.Deduction)
}

func TestCategory_RoomScoped(t *testing.T) {
	assert.True(t, CategoryBathroom.RoomScoped())
	assert.True(t, CategoryKitchen.RoomScoped())
	assert.False(t, CategoryPainting.RoomScoped())
	assert.False(t, CategoryGeneric.RoomScoped())
}
