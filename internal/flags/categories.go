package flags

import "github.com/jonathan/quote-pipeline/internal/classify"

// Material categories used by the supplies flag and the material checks of the validators
const (
	CategoryAll           = "*"
	CategoryTiles         = "tiles"
	CategoryWaterproofing = "waterproofing"
	CategoryAdhesive      = "adhesive"
	CategoryPaint         = "paint"
	CategoryWallpaper     = "wallpaper"
	CategoryPlumbing      = "plumbing"
	CategoryElectrical    = "electrical"
	CategoryCabinets      = "cabinets"
	CategoryAppliances    = "appliances"
	CategoryFlooring      = "flooring"
	CategoryPlants        = "plants"
	CategoryConsumables   = "consumables"
	CategoryOther         = "other"
)

type categoryRule struct {
	category string
	keywords classify.Keywords
}

// materialCategories is ordered; the first matching row wins
var materialCategories = []categoryRule{
	{CategoryTiles, classify.NewKeywords("kakel*", "*kakel*", "klinker*", "*klinker*", "plattor", "mosaik*", "tiles", "tile")},
	{CategoryWaterproofing, classify.NewKeywords("tätskikt*", "*tätskikt*", "membran*", "våtrumsmatta*", "primer", "waterproofing")},
	{CategoryAdhesive, classify.NewKeywords("fix", "fog", "fogmassa*", "kakelfix*", "golvfix*", "lim", "grout", "adhesive")},
	{CategoryPaint, classify.NewKeywords("färg*", "*färg", "*färgen", "lack*", "spackel*", "bets*", "paint")},
	{CategoryWallpaper, classify.NewKeywords("tapet*", "*tapet", "*tapeter", "tapetklister*", "wallpaper")},
	{CategoryPlumbing, classify.NewKeywords("blandare*", "*blandare", "vvs*", "toalett*", "wc", "handfat*", "golvbrunn*", "kommod*", "dusch*", "*dusch*", "badkar*", "faucet", "toilet")},
	{CategoryElectrical, classify.NewKeywords("elmaterial*", "kabel*", "kablar", "uttag*", "brytare*", "*brytare", "armatur*", "lampa", "lampor", "dosor", "spottar", "spotlight*")},
	{CategoryCabinets, classify.NewKeywords("skåp*", "*skåp*", "luckor", "bänkskiv*", "*bänkskiv*", "cabinets", "countertop")},
	{CategoryAppliances, classify.NewKeywords("vitvar*", "diskmaskin*", "spis*", "ugn*", "kyl*", "frys*", "köksfläkt*", "appliances")},
	{CategoryFlooring, classify.NewKeywords("parkett*", "laminat*", "golvmatta*", "vinylgolv*", "trägolv*", "flooring")},
	{CategoryPlants, classify.NewKeywords("växt*", "*växter", "plantor", "jord", "jord*", "gödsel*", "*gödsel", "plants")},
	{CategoryConsumables, classify.NewKeywords("täckpapp*", "tejp*", "rengöringsmedel*", "förbrukning*", "avfallssäck*", "*säckar", "skyddsplast*")},
}

var contingencyKeywords = classify.NewKeywords("oförutsett*", "*oförutsett*", "reserv*", "buffert*", "marginal*", "contingency")

// MaterialCategory tags a material name. Unmatched names are CategoryOther.
func MaterialCategory(name string) string {
	tokens := classify.Tokenize(name)
	for _, rule := range materialCategories {
		if rule.keywords.Match(tokens) {
			return rule.category
		}
	}
	return CategoryOther
}

// IsContingency reports whether a material line is an unspecified buffer
func IsContingency(name string) bool {
	return contingencyKeywords.Match(classify.Tokenize(name))
}

// categoriesIn returns the material categories named in tokens, in table order
func categoriesIn(tokens []string) []string {
	var out []string
	for _, rule := range materialCategories {
		if rule.category == CategoryConsumables {
			continue
		}
		if rule.keywords.Match(tokens) {
			out = append(out, rule.category)
		}
	}
	return out
}
