package validation

import (
	"github.com/jonathan/quote-pipeline/internal/classify"
	"github.com/jonathan/quote-pipeline/internal/flags"
	"github.com/jonathan/quote-pipeline/internal/jobs"
)

// pattern matches when every keyword group matches some name token
type pattern []classify.Keywords

func (p pattern) match(tokens []string) bool {
	for _, kws := range p {
		if !kws.Match(tokens) {
			return false
		}
	}
	return len(p) > 0
}

func words(list ...string) classify.Keywords {
	return classify.NewKeywords(list...)
}

// Requirement is a mandatory work step of a trade family
type Requirement struct {
	Name         string
	Patterns     []pattern
	PerUnit      bool
	MinHours     float64
	TypicalHours float64
}

// Matches reports whether a work item name satisfies the requirement
func (r Requirement) Matches(name string) bool {
	tokens := classify.Tokenize(name)
	for _, p := range r.Patterns {
		if p.match(tokens) {
			return true
		}
	}
	return false
}

// Threshold returns the minimum hours for size units
func (r Requirement) Threshold(size float64) float64 {
	if r.PerUnit {
		return r.MinHours * size
	}
	return r.MinHours
}

// Typical returns the hours auto-fix uses for size units
func (r Requirement) Typical(size float64) float64 {
	if r.PerUnit {
		return r.TypicalHours * size
	}
	return r.TypicalHours
}

// MaterialRequirement is a material category a family's quote should contain
type MaterialRequirement struct {
	Category string
	Label    string
}

// Rules is the requirement table of one trade family
type Rules struct {
	Family                 jobs.Category
	Requirements           []Requirement
	MinCostPerUnit         float64
	RecommendedCostPerUnit float64
	Materials              []MaterialRequirement
	RateFloor              float64
}

var (
	demolitionWords    = words("rivning*", "*rivning*", "riv", "riva", "demonter*", "utrivning*")
	waterproofingWords = words("tätskikt*", "*tätskikt*", "membran*", "våtrumsmatta*", "fuktspärr*")
	tileWords          = words("kakel*", "*kakel*", "kakla*", "plattsätt*")
	wallWords          = words("vägg*", "*vägg*")
	floorWords         = words("golv*", "*golv")
	klinkerWords       = words("klinker*", "*klinker*")
	plumbingWords      = words("vvs*", "rör*", "*rördragning*", "avlopp*", "blandare*", "toalett*", "wc", "golvbrunn*", "rörmokeri*", "vattenledning*")
	electricalWords    = words("el", "elinstall*", "elektri*", "eldrag*", "elarbete*", "elinstallation*")
)

var bathroomRules = Rules{
	Family: jobs.CategoryBathroom,
	Requirements: []Requirement{
		{Name: "Rivning", Patterns: []pattern{{demolitionWords}}, PerUnit: true, MinHours: 0.8, TypicalHours: 1.5},
		{Name: "Tätskikt", Patterns: []pattern{{waterproofingWords}}, PerUnit: true, MinHours: 0.5, TypicalHours: 1.0},
		{Name: "Kakelsättning vägg", Patterns: []pattern{{tileWords, wallWords}}, PerUnit: true, MinHours: 0.8, TypicalHours: 1.25},
		{Name: "Klinkerläggning golv", Patterns: []pattern{{klinkerWords}, {tileWords, floorWords}}, PerUnit: true, MinHours: 0.5, TypicalHours: 1.0},
		{Name: "VVS-installation", Patterns: []pattern{{plumbingWords}}, MinHours: 6, TypicalHours: 16},
		{Name: "El-installation våtrum", Patterns: []pattern{{electricalWords}}, PerUnit: true, MinHours: 0.5, TypicalHours: 1.0},
	},
	MinCostPerUnit:         8000,
	RecommendedCostPerUnit: 12000,
	Materials: []MaterialRequirement{
		{Category: flags.CategoryWaterproofing, Label: "tätskiktsmaterial"},
		{Category: flags.CategoryTiles, Label: "kakel eller klinker"},
		{Category: flags.CategoryAdhesive, Label: "fix och fog"},
	},
	RateFloor: 450,
}

var kitchenRules = Rules{
	Family: jobs.CategoryKitchen,
	Requirements: []Requirement{
		{Name: "Rivning kök", Patterns: []pattern{{demolitionWords}}, MinHours: 4, TypicalHours: 12},
		{Name: "Montering köksskåp", Patterns: []pattern{{words("skåp*", "*skåp*", "kökssnickeri*", "köksmontering*", "köksinredning*")}}, MinHours: 12, TypicalHours: 24},
		{Name: "Montering bänkskiva", Patterns: []pattern{{words("bänkskiv*", "*bänkskiv*")}}, MinHours: 3, TypicalHours: 8},
		{Name: "VVS-anslutning kök", Patterns: []pattern{{plumbingWords}}, MinHours: 3, TypicalHours: 8},
		{Name: "El-installation kök", Patterns: []pattern{{electricalWords}}, MinHours: 4, TypicalHours: 10},
	},
	MinCostPerUnit:         50000,
	RecommendedCostPerUnit: 90000,
	Materials: []MaterialRequirement{
		{Category: flags.CategoryCabinets, Label: "skåp och bänkskiva"},
	},
	RateFloor: 450,
}

var paintingRules = Rules{
	Family: jobs.CategoryPainting,
	Requirements: []Requirement{
		{Name: "Skydd och täckning", Patterns: []pattern{{words("skydd*", "*skydd*", "täckning*", "maskering*")}}, MinHours: 1, TypicalHours: 2},
		{Name: "Spackling och slipning", Patterns: []pattern{{words("spackl*", "*spackling*", "slipning*", "*slipning")}}, PerUnit: true, MinHours: 0.05, TypicalHours: 0.1},
		{Name: "Målning väggar", Patterns: []pattern{{words("mål*", "*målning*", "måla", "målar*", "lack*", "*lackering")}}, PerUnit: true, MinHours: 0.1, TypicalHours: 0.15},
	},
	MinCostPerUnit:         150,
	RecommendedCostPerUnit: 250,
	Materials: []MaterialRequirement{
		{Category: flags.CategoryPaint, Label: "färg"},
	},
	RateFloor: 400,
}

var cleaningRules = Rules{
	Family: jobs.CategoryCleaning,
	Requirements: []Requirement{
		{Name: "Städning bostad", Patterns: []pattern{{words("städ*", "*städ*", "rengöring*", "storstäd*")}}, PerUnit: true, MinHours: 0.04, TypicalHours: 0.07},
		{Name: "Rengöring kök och vitvaror", Patterns: []pattern{{words("kök", "köket", "kök*", "*kök", "vitvar*", "ugn*", "kyl*")}}, MinHours: 1, TypicalHours: 2},
		{Name: "Rengöring badrum", Patterns: []pattern{{words("badrum*", "*badrum*", "våtrum*", "toalett*", "wc")}}, MinHours: 0.75, TypicalHours: 1.5},
	},
	MinCostPerUnit:         30,
	RecommendedCostPerUnit: 45,
	RateFloor:              300,
}

var gardeningRules = Rules{
	Family: jobs.CategoryGardening,
	Requirements: []Requirement{
		{Name: "Bortforsling trädgårdsavfall", Patterns: []pattern{{words("bortforsling*", "*avfall*", "avfall*", "tipp*", "kompost*")}}, MinHours: 0.5, TypicalHours: 1.5},
	},
	MinCostPerUnit:         10,
	RecommendedCostPerUnit: 15,
	RateFloor:              350,
}

// electrical work is regulated; the rate floor is the strictest in the catalog
var electricalRules = Rules{
	Family: jobs.CategoryElectrical,
	Requirements: []Requirement{
		{Name: "Eldragning", Patterns: []pattern{{words("eldrag*", "kabel*", "kablar", "ledningsdrag*", "elinstall*", "dragning*")}}, PerUnit: true, MinHours: 0.3, TypicalHours: 0.6},
		{Name: "Montering uttag och brytare", Patterns: []pattern{{words("uttag*", "eluttag*", "brytare*", "*brytare", "strömbrytar*", "armatur*")}}, PerUnit: true, MinHours: 0.2, TypicalHours: 0.4},
		{Name: "Egenkontroll och dokumentation", Patterns: []pattern{{words("egenkontroll*", "dokumentation*", "besiktning*", "*kontroll")}}, MinHours: 1, TypicalHours: 2},
	},
	MinCostPerUnit:         900,
	RecommendedCostPerUnit: 1200,
	Materials: []MaterialRequirement{
		{Category: flags.CategoryElectrical, Label: "elmaterial"},
	},
	RateFloor: 550,
}

var rulesByFamily = map[jobs.Category]Rules{
	jobs.CategoryBathroom:   bathroomRules,
	jobs.CategoryKitchen:    kitchenRules,
	jobs.CategoryPainting:   paintingRules,
	jobs.CategoryCleaning:   cleaningRules,
	jobs.CategoryGardening:  gardeningRules,
	jobs.CategoryElectrical: electricalRules,
}

// RulesFor returns the requirement table of a family
func RulesFor(family jobs.Category) (Rules, bool) {
	r, ok := rulesByFamily[family]
	return r, ok
}
