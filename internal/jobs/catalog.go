package jobs

import (
	"github.com/jonathan/quote-pipeline/internal/classify"
	"github.com/jonathan/quote-pipeline/internal/deduction"
)

// catalog returns the fixed definitions in lookup order. Earlier entries win keyword ties
// between two rooms or two trades.
func catalog() []JobDefinition {
	return []JobDefinition{
		bathroom(),
		kitchen(),
		painting(),
		electrical(),
		cleaning(),
		gardening(),
	}
}

func bathroom() JobDefinition {
	return JobDefinition{
		JobType:       "bathroom_renovation",
		Category:      CategoryBathroom,
		Name:          "Badrumsrenovering",
		Keywords:      []string{"bathroom", "badrum*", "*badrum*", "våtrum*", "*våtrum*", "duschrum*", "kakel*", "kakla*"},
		UnitType:      UnitSquareMeter,
		TimePerUnit:   TimeBounds{Simple: 7, Normal: 9, Complex: 13},
		HourlyRate:    RateRange{Min: 550, Typical: 650, Max: 800},
		MaterialRatio: 0.4,
		StandardWorkItems: []StandardWorkItem{
			{Name: "Rivning", Mandatory: true, PerUnit: true, TypicalHours: 1.5},
			{Name: "Tätskikt", Mandatory: true, PerUnit: true, TypicalHours: 1.0},
			{Name: "Kakelsättning vägg", Mandatory: true, PerUnit: true, TypicalHours: 1.25},
			{Name: "Klinkerläggning golv", Mandatory: true, PerUnit: true, TypicalHours: 1.0},
			{Name: "VVS-installation", Mandatory: true, TypicalHours: 16},
			{Name: "El-installation våtrum", Mandatory: true, PerUnit: true, TypicalHours: 1.0},
			{Name: "Slutstädning", TypicalHours: 3},
		},
		Materials: []MaterialCalc{
			{Name: "Kakel vägg", Formula: "area * 2.2", Unit: "m2", Prices: TierPrices{250, 400, 750}, RoundUp: true},
			{Name: "Klinker golv", Formula: "area * 1.1", Unit: "m2", Prices: TierPrices{300, 450, 850}, RoundUp: true},
			{Name: "Tätskiktssystem", Formula: "area * 2.5 / 10", Unit: "st", Prices: TierPrices{1400, 1800, 2600}, RoundUp: true},
			{Name: "Fix och fog", Formula: "area * 3.5 / 20", Unit: "säck", Prices: TierPrices{350, 450, 650}, RoundUp: true},
			{Name: "Golvbrunn", Formula: "1", Unit: "st", Prices: TierPrices{1600, 2200, 3500}},
			{Name: "Blandare och VVS-material", Formula: "1", Unit: "st", Prices: TierPrices{4000, 6500, 12000}},
			{Name: "Elmaterial våtrum", Formula: "1", Unit: "st", Prices: TierPrices{1800, 2500, 4000}},
		},
		Proportions: ProportionRules{MaxSingleItemShare: 0.45, DemolitionMaxShare: 0.25, MinWorkItems: 4},
		Deduction:   deduction.KindROT,
		Defaults:    Defaults{UnitQty: 5, Complexity: ComplexityNormal, Quality: TierStandard},
		Standards: []Standard{
			{ID: "rivning", Domain: classify.DomainDemolition, Component: classify.ComponentUnknown, Surface: classify.SurfaceNone, MinPerUnit: 1.0, MaxPerUnit: 2.5, PerUnit: true},
			{ID: "tatskikt", Domain: classify.DomainWaterproofing, Component: classify.ComponentUnknown, Surface: classify.SurfaceNone, MinPerUnit: 0.6, MaxPerUnit: 1.5, PerUnit: true},
			{ID: "kakel_vagg", Domain: classify.DomainTiling, Component: classify.ComponentTiles, Surface: classify.SurfaceWall, MinPerUnit: 1.0, MaxPerUnit: 1.5, PerUnit: true},
			{ID: "klinker_golv", Domain: classify.DomainTiling, Component: classify.ComponentTiles, Surface: classify.SurfaceFloor, MinPerUnit: 0.7, MaxPerUnit: 1.5, PerUnit: true},
			{ID: "vvs", Domain: classify.DomainPlumbing, Component: classify.ComponentUnknown, Surface: classify.SurfaceNone, MinPerUnit: 8, MaxPerUnit: 24},
			{ID: "el_vatrum", Domain: classify.DomainElectrical, Component: classify.ComponentUnknown, Surface: classify.SurfaceNone, MinPerUnit: 0.5, MaxPerUnit: 2.0, PerUnit: true},
		},
	}
}

func kitchen() JobDefinition {
	return JobDefinition{
		JobType:       "kitchen_renovation",
		Category:      CategoryKitchen,
		Name:          "Köksrenovering",
		Keywords:      []string{"kitchen", "kök", "köket", "kök*", "*kök", "*köket", "köksrenover*"},
		UnitType:      UnitPiece,
		TimePerUnit:   TimeBounds{Simple: 55, Normal: 80, Complex: 120},
		HourlyRate:    RateRange{Min: 520, Typical: 620, Max: 780},
		MaterialRatio: 0.5,
		StandardWorkItems: []StandardWorkItem{
			{Name: "Rivning kök", Mandatory: true, TypicalHours: 12},
			{Name: "Montering köksskåp", Mandatory: true, TypicalHours: 24},
			{Name: "Montering bänkskiva", Mandatory: true, TypicalHours: 8},
			{Name: "VVS-anslutning kök", Mandatory: true, TypicalHours: 8},
			{Name: "El-installation kök", Mandatory: true, TypicalHours: 10},
			{Name: "Installation vitvaror", Mandatory: true, TypicalHours: 6},
			{Name: "Kakel stänkskydd", TypicalHours: 8},
			{Name: "Slutstädning", TypicalHours: 3},
		},
		Materials: []MaterialCalc{
			{Name: "Köksskåp och luckor", Formula: "quantity", Unit: "st", Prices: TierPrices{25000, 45000, 90000}},
			{Name: "Bänkskiva", Formula: "quantity", Unit: "st", Prices: TierPrices{6000, 12000, 25000}},
			{Name: "VVS-material kök", Formula: "quantity", Unit: "st", Prices: TierPrices{2500, 3500, 6000}},
			{Name: "Elmaterial kök", Formula: "quantity", Unit: "st", Prices: TierPrices{1800, 2500, 4000}},
			{Name: "Kakel stänkskydd", Formula: "quantity * 3", Unit: "m2", Prices: TierPrices{250, 400, 800}, RoundUp: true},
		},
		Proportions: ProportionRules{MaxSingleItemShare: 0.45, DemolitionMaxShare: 0.2, MinWorkItems: 4},
		Deduction:   deduction.KindROT,
		Defaults:    Defaults{UnitQty: 1, Complexity: ComplexityNormal, Quality: TierStandard},
		Standards: []Standard{
			{ID: "rivning_kok", Domain: classify.DomainDemolition, Component: classify.ComponentUnknown, Surface: classify.SurfaceNone, MinPerUnit: 8, MaxPerUnit: 20},
			{ID: "skapsmontering", Domain: classify.DomainKitchen, Component: classify.ComponentCabinet, Surface: classify.SurfaceNone, MinPerUnit: 16, MaxPerUnit: 40},
			{ID: "bankskiva", Domain: classify.DomainKitchen, Component: classify.ComponentCountertop, Surface: classify.SurfaceNone, MinPerUnit: 4, MaxPerUnit: 12},
			{ID: "vitvaror", Domain: classify.DomainKitchen, Component: classify.ComponentAppliance, Surface: classify.SurfaceNone, MinPerUnit: 3, MaxPerUnit: 10},
			{ID: "vvs_kok", Domain: classify.DomainPlumbing, Component: classify.ComponentUnknown, Surface: classify.SurfaceNone, MinPerUnit: 4, MaxPerUnit: 12},
			{ID: "el_kok", Domain: classify.DomainElectrical, Component: classify.ComponentUnknown, Surface: classify.SurfaceNone, MinPerUnit: 6, MaxPerUnit: 16},
			{ID: "stankskydd", Domain: classify.DomainTiling, Component: classify.ComponentTiles, Surface: classify.SurfaceNone, MinPerUnit: 4, MaxPerUnit: 12},
		},
	}
}

func painting() JobDefinition {
	return JobDefinition{
		JobType:       "painting",
		Category:      CategoryPainting,
		Name:          "Målning",
		Keywords:      []string{"painting", "paint", "måla", "målning*", "*målning*", "målar*", "tapet*", "*tapetsering*"},
		UnitType:      UnitSquareMeter,
		TimePerUnit:   TimeBounds{Simple: 0.25, Normal: 0.35, Complex: 0.5},
		HourlyRate:    RateRange{Min: 450, Typical: 520, Max: 650},
		MaterialRatio: 0.15,
		StandardWorkItems: []StandardWorkItem{
			{Name: "Skydd och täckning", Mandatory: true, TypicalHours: 2},
			{Name: "Spackling och slipning", Mandatory: true, PerUnit: true, TypicalHours: 0.1},
			{Name: "Grundmålning", PerUnit: true, TypicalHours: 0.08},
			{Name: "Målning väggar", Mandatory: true, PerUnit: true, TypicalHours: 0.15},
		},
		Materials: []MaterialCalc{
			{Name: "Täckfärg", Formula: "area / 6.5", Unit: "l", Prices: TierPrices{90, 150, 260}, RoundUp: true},
			{Name: "Grundfärg", Formula: "area / 8", Unit: "l", Prices: TierPrices{70, 110, 180}, RoundUp: true},
			{Name: "Spackel", Formula: "area / 10", Unit: "l", Prices: TierPrices{40, 60, 90}, RoundUp: true},
			{Name: "Täckpapp och tejp", Formula: "ceil(area / 25)", Unit: "st", Prices: TierPrices{120, 150, 200}},
		},
		Proportions: ProportionRules{MaxSingleItemShare: 0.6, DemolitionMaxShare: 0.1, MinWorkItems: 2},
		Deduction:   deduction.KindROT,
		Defaults:    Defaults{UnitQty: 40, Complexity: ComplexityNormal, Quality: TierStandard},
		Standards: []Standard{
			{ID: "skydd", Domain: classify.DomainPreparation, Component: classify.ComponentUnknown, Surface: classify.SurfaceNone, MinPerUnit: 1, MaxPerUnit: 4},
			{ID: "spackling", Domain: classify.DomainPainting, Component: classify.ComponentSurfacePrep, Surface: classify.SurfaceNone, MinPerUnit: 0.06, MaxPerUnit: 0.15, PerUnit: true},
			{ID: "malning_vagg", Domain: classify.DomainPainting, Component: classify.ComponentPaint, Surface: classify.SurfaceWall, MinPerUnit: 0.1, MaxPerUnit: 0.25, PerUnit: true},
			{ID: "malning_tak", Domain: classify.DomainPainting, Component: classify.ComponentPaint, Surface: classify.SurfaceCeiling, MinPerUnit: 0.12, MaxPerUnit: 0.3, PerUnit: true},
		},
	}
}

func electrical() JobDefinition {
	return JobDefinition{
		JobType:       "electrical",
		Category:      CategoryElectrical,
		Name:          "Elinstallation",
		Keywords:      []string{"electrical", "electrician", "el", "elinstall*", "elektri*", "elcentral*", "eluttag*", "uttag*", "laddbox*", "elarbete*"},
		UnitType:      UnitPiece,
		TimePerUnit:   TimeBounds{Simple: 0.75, Normal: 1.0, Complex: 1.5},
		HourlyRate:    RateRange{Min: 650, Typical: 750, Max: 950},
		MaterialRatio: 0.25,
		StandardWorkItems: []StandardWorkItem{
			{Name: "Eldragning", Mandatory: true, PerUnit: true, TypicalHours: 0.6},
			{Name: "Montering uttag och brytare", Mandatory: true, PerUnit: true, TypicalHours: 0.4},
			{Name: "Egenkontroll och dokumentation", Mandatory: true, TypicalHours: 2},
			{Name: "Anslutning elcentral", TypicalHours: 2},
		},
		Materials: []MaterialCalc{
			{Name: "Kabel och rör", Formula: "quantity * 8", Unit: "m", Prices: TierPrices{15, 22, 35}},
			{Name: "Uttag och brytare", Formula: "quantity", Unit: "st", Prices: TierPrices{60, 120, 250}},
			{Name: "Dosor och förbrukning", Formula: "ceil(quantity / 5)", Unit: "st", Prices: TierPrices{120, 150, 200}},
		},
		Proportions: ProportionRules{MaxSingleItemShare: 0.7, DemolitionMaxShare: 0.1, MinWorkItems: 2},
		Deduction:   deduction.KindROT,
		Defaults:    Defaults{UnitQty: 5, Complexity: ComplexityNormal, Quality: TierStandard},
		Standards: []Standard{
			{ID: "eldragning", Domain: classify.DomainElectrical, Component: classify.ComponentWiring, Surface: classify.SurfaceNone, MinPerUnit: 0.4, MaxPerUnit: 1.0, PerUnit: true},
			{ID: "uttag", Domain: classify.DomainElectrical, Component: classify.ComponentOutlet, Surface: classify.SurfaceNone, MinPerUnit: 0.25, MaxPerUnit: 0.6, PerUnit: true},
			{ID: "elcentral", Domain: classify.DomainElectrical, Component: classify.ComponentPanel, Surface: classify.SurfaceNone, MinPerUnit: 1, MaxPerUnit: 4},
		},
	}
}

func cleaning() JobDefinition {
	return JobDefinition{
		JobType:       "cleaning",
		Category:      CategoryCleaning,
		Name:          "Städning",
		Keywords:      []string{"cleaning", "städ*", "*städ*", "städning*", "fönsterputs*", "flyttstäd*"},
		UnitType:      UnitSquareMeter,
		TimePerUnit:   TimeBounds{Simple: 0.08, Normal: 0.1, Complex: 0.15},
		HourlyRate:    RateRange{Min: 350, Typical: 420, Max: 550},
		MaterialRatio: 0.05,
		StandardWorkItems: []StandardWorkItem{
			{Name: "Städning bostad", Mandatory: true, PerUnit: true, TypicalHours: 0.07},
			{Name: "Rengöring kök och vitvaror", Mandatory: true, TypicalHours: 2},
			{Name: "Rengöring badrum", Mandatory: true, TypicalHours: 1.5},
			{Name: "Fönsterputs", TypicalHours: 2},
		},
		Materials: []MaterialCalc{
			{Name: "Rengöringsmedel och förbrukning", Formula: "ceil(area / 50)", Unit: "st", Prices: TierPrices{120, 150, 220}},
		},
		Proportions: ProportionRules{MaxSingleItemShare: 0.8, MinWorkItems: 1},
		Deduction:   deduction.KindRUT,
		Defaults:    Defaults{UnitQty: 70, Complexity: ComplexityNormal, Quality: TierStandard},
		Standards: []Standard{
			{ID: "fonsterputs", Domain: classify.DomainCleaning, Component: classify.ComponentWindow, Surface: classify.SurfaceNone, MinPerUnit: 1, MaxPerUnit: 4},
		},
	}
}

func gardening() JobDefinition {
	return JobDefinition{
		JobType:       "gardening",
		Category:      CategoryGardening,
		Name:          "Trädgårdsarbete",
		Keywords:      []string{"garden", "gardening", "trädgård*", "*trädgård*", "gräsmatt*", "gräsklipp*", "häck*", "*häck*", "ogräs*"},
		UnitType:      UnitSquareMeter,
		TimePerUnit:   TimeBounds{Simple: 0.02, Normal: 0.03, Complex: 0.05},
		HourlyRate:    RateRange{Min: 380, Typical: 450, Max: 600},
		MaterialRatio: 0.1,
		StandardWorkItems: []StandardWorkItem{
			{Name: "Gräsklippning", Mandatory: true, PerUnit: true, TypicalHours: 0.01},
			{Name: "Häckklippning", TypicalHours: 3},
			{Name: "Ogräsrensning rabatter", PerUnit: true, TypicalHours: 0.01},
			{Name: "Bortforsling trädgårdsavfall", Mandatory: true, TypicalHours: 1.5},
		},
		Materials: []MaterialCalc{
			{Name: "Jord och gödsel", Formula: "area / 20", Unit: "säck", Prices: TierPrices{70, 90, 140}, RoundUp: true},
			{Name: "Avfallssäckar", Formula: "ceil(area / 100)", Unit: "st", Prices: TierPrices{40, 60, 80}},
		},
		Proportions: ProportionRules{MaxSingleItemShare: 0.8, MinWorkItems: 1},
		Deduction:   deduction.KindRUT,
		Defaults:    Defaults{UnitQty: 200, Complexity: ComplexityNormal, Quality: TierStandard},
		Standards: []Standard{
			{ID: "grasklippning", Domain: classify.DomainGardening, Component: classify.ComponentLawn, Surface: classify.SurfaceNone, MinPerUnit: 0.005, MaxPerUnit: 0.02, PerUnit: true},
			{ID: "hackklippning", Domain: classify.DomainGardening, Component: classify.ComponentHedge, Surface: classify.SurfaceNone, MinPerUnit: 2, MaxPerUnit: 6},
		},
	}
}

// generic is the fallback for unmatched input; it only checks that items exist and cost something
func generic() JobDefinition {
	return JobDefinition{
		JobType:       "generic",
		Category:      CategoryGeneric,
		Name:          "Övrigt arbete",
		UnitType:      UnitPiece,
		TimePerUnit:   TimeBounds{Simple: 1, Normal: 1, Complex: 1},
		HourlyRate:    RateRange{Min: 450, Typical: 550, Max: 800},
		MaterialRatio: 0.2,
		Proportions:   ProportionRules{MinWorkItems: 1},
		Deduction:     deduction.KindNone,
		Defaults:      Defaults{UnitQty: 1, Complexity: ComplexityNormal, Quality: TierStandard},
	}
}
