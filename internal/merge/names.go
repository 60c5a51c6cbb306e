package merge

import "github.com/jonathan/quote-pipeline/internal/classify"

// friendlyName is a display name for merged items of one kind of work.
// ComponentUnknown and SurfaceNone act as wildcards.
type friendlyName struct {
	domain    classify.Domain
	component classify.Component
	surface   classify.Surface
	name      string
}

var friendlyNames = []friendlyName{
	{classify.DomainTiling, classify.ComponentTiles, classify.SurfaceWall, "Kakelsättning vägg"},
	{classify.DomainTiling, classify.ComponentTiles, classify.SurfaceFloor, "Klinkerläggning golv"},
	{classify.DomainTiling, classify.ComponentUnknown, classify.SurfaceNone, "Plattsättning"},
	{classify.DomainWaterproofing, classify.ComponentUnknown, classify.SurfaceNone, "Tätskikt"},
	{classify.DomainDemolition, classify.ComponentDebris, classify.SurfaceNone, "Bortforsling"},
	{classify.DomainDemolition, classify.ComponentUnknown, classify.SurfaceNone, "Rivning"},
	{classify.DomainPlumbing, classify.ComponentUnknown, classify.SurfaceNone, "VVS-installation"},
	{classify.DomainElectrical, classify.ComponentWiring, classify.SurfaceNone, "Eldragning"},
	{classify.DomainElectrical, classify.ComponentOutlet, classify.SurfaceNone, "Montering uttag och brytare"},
	{classify.DomainElectrical, classify.ComponentLighting, classify.SurfaceNone, "Montering belysning"},
	{classify.DomainElectrical, classify.ComponentPanel, classify.SurfaceNone, "Anslutning elcentral"},
	{classify.DomainElectrical, classify.ComponentUnknown, classify.SurfaceNone, "El-installation"},
	{classify.DomainPainting, classify.ComponentSurfacePrep, classify.SurfaceNone, "Spackling och slipning"},
	{classify.DomainPainting, classify.ComponentWallpaper, classify.SurfaceNone, "Tapetsering"},
	{classify.DomainPainting, classify.ComponentUnknown, classify.SurfaceWall, "Målning väggar"},
	{classify.DomainPainting, classify.ComponentUnknown, classify.SurfaceCeiling, "Målning tak"},
	{classify.DomainPainting, classify.ComponentUnknown, classify.SurfaceFacade, "Fasadmålning"},
	{classify.DomainPainting, classify.ComponentUnknown, classify.SurfaceNone, "Målning"},
	{classify.DomainPreparation, classify.ComponentUnknown, classify.SurfaceNone, "Skydd och täckning"},
	{classify.DomainCarpentry, classify.ComponentUnknown, classify.SurfaceNone, "Snickeri"},
	{classify.DomainFlooring, classify.ComponentUnknown, classify.SurfaceNone, "Golvläggning"},
	{classify.DomainKitchen, classify.ComponentCabinet, classify.SurfaceNone, "Montering köksskåp"},
	{classify.DomainKitchen, classify.ComponentCountertop, classify.SurfaceNone, "Montering bänkskiva"},
	{classify.DomainKitchen, classify.ComponentAppliance, classify.SurfaceNone, "Installation vitvaror"},
	{classify.DomainKitchen, classify.ComponentUnknown, classify.SurfaceNone, "Köksmontering"},
	{classify.DomainCleaning, classify.ComponentWindow, classify.SurfaceNone, "Fönsterputs"},
	{classify.DomainCleaning, classify.ComponentUnknown, classify.SurfaceNone, "Städning"},
	{classify.DomainGardening, classify.ComponentLawn, classify.SurfaceNone, "Gräsklippning"},
	{classify.DomainGardening, classify.ComponentHedge, classify.SurfaceNone, "Häckklippning"},
	{classify.DomainGardening, classify.ComponentTree, classify.SurfaceNone, "Trädvård"},
	{classify.DomainGardening, classify.ComponentPlanting, classify.SurfaceNone, "Plantering och rabatter"},
	{classify.DomainGardening, classify.ComponentUnknown, classify.SurfaceNone, "Trädgårdsarbete"},
}

// FriendlyName returns the most specific display name for c
func FriendlyName(c classify.Classification) (string, bool) {
	best := ""
	bestSpec := -1
	for _, f := range friendlyNames {
		if f.domain != c.Domain {
			continue
		}
		if f.component != classify.ComponentUnknown && f.component != c.Component {
			continue
		}
		if f.surface != classify.SurfaceNone && f.surface != c.Surface {
			continue
		}
		score := 0
		if f.component != classify.ComponentUnknown {
			score++
		}
		if f.surface != classify.SurfaceNone {
			score++
		}
		if score > bestSpec {
			best = f.name
			bestSpec = score
		}
	}
	return best, bestSpec >= 0
}

// stopWords carry no meaning for similarity
var stopWords = map[string]bool{
	"och": true, "av": true, "i": true, "på": true, "för": true, "med": true,
	"till": true, "samt": true, "inkl": true, "ev": true, "m2": true, "kvm": true,
	"st": true, "h": true, "the": true, "and": true, "of": true,
}

// significantTokens returns the lower-cased name tokens without stop words and numbers
func significantTokens(name string) []string {
	var out []string
	for _, tok := range classify.Tokenize(name) {
		if stopWords[tok] || isNumber(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func isNumber(tok string) bool {
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return tok != ""
}

// jaccard is |a ∩ b| / |a ∪ b| over token sets
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
