package classify

// Domain is the trade a work item belongs to
type Domain string

// Domains recognised by the classifier
const (
	DomainUnknown       Domain = "unknown"
	DomainDemolition    Domain = "demolition"
	DomainWaterproofing Domain = "waterproofing"
	DomainTiling        Domain = "tiling"
	DomainPlumbing      Domain = "plumbing"
	DomainElectrical    Domain = "electrical"
	DomainPainting      Domain = "painting"
	DomainCarpentry     Domain = "carpentry"
	DomainFlooring      Domain = "flooring"
	DomainKitchen       Domain = "kitchen_install"
	DomainCleaning      Domain = "cleaning"
	DomainGardening     Domain = "gardening"
	DomainPreparation   Domain = "preparation"
)

// Component is the thing being worked on
type Component string

// Components recognised by the classifier
const (
	ComponentUnknown     Component = "unknown"
	ComponentTiles       Component = "tiles"
	ComponentMembrane    Component = "membrane"
	ComponentPaint       Component = "paint"
	ComponentWallpaper   Component = "wallpaper"
	ComponentFixture     Component = "fixture"
	ComponentPipes       Component = "pipes"
	ComponentWiring      Component = "wiring"
	ComponentOutlet      Component = "outlet"
	ComponentLighting    Component = "lighting"
	ComponentPanel       Component = "panel"
	ComponentHeating     Component = "floor_heating"
	ComponentCabinet     Component = "cabinet"
	ComponentCountertop  Component = "countertop"
	ComponentAppliance   Component = "appliance"
	ComponentLawn        Component = "lawn"
	ComponentHedge       Component = "hedge"
	ComponentTree        Component = "tree"
	ComponentPlanting    Component = "planting"
	ComponentPaving      Component = "paving"
	ComponentWindow      Component = "window"
	ComponentDoor        Component = "door"
	ComponentFloorCover  Component = "floor_covering"
	ComponentDebris      Component = "debris"
	ComponentSurfacePrep Component = "surface_prep"
)

// Surface is where the work is done
type Surface string

// Surfaces recognised by the classifier
const (
	SurfaceNone    Surface = "none"
	SurfaceWall    Surface = "wall"
	SurfaceFloor   Surface = "floor"
	SurfaceCeiling Surface = "ceiling"
	SurfaceFacade  Surface = "facade"
)

type domainRule struct {
	domain   Domain
	keywords Keywords
}

type componentRule struct {
	component Component
	keywords  Keywords
}

type surfaceRule struct {
	surface  Surface
	keywords Keywords
}

// domainTable is ordered; earlier rows win exact ties
var domainTable = []domainRule{
	{DomainDemolition, NewKeywords("rivning*", "riv", "riva", "*rivning*", "demonter*", "bortforsling*", "utrivning*", "håltagning*")},
	{DomainWaterproofing, NewKeywords("tätskikt*", "*tätskikt*", "fuktspärr*", "membran*", "vattentät*", "våtrumsmatta*")},
	{DomainTiling, NewKeywords("kakel*", "*kakel*", "klinker*", "*klinker*", "kakla*", "plattsätt*", "fogning*", "omfogning*")},
	{DomainPlumbing, NewKeywords("!vvs", "vvs*", "rör*", "*rördragning*", "avlopp*", "golvbrunn*", "blandare*", "toalett*", "wc", "handfat*", "dusch*", "badkar*", "kommod*", "vattenledning*")},
	{DomainElectrical, NewKeywords("!el", "elinstall*", "elektri*", "eluttag*", "elcentral*", "eldrag*", "elarbete*", "*belysning*", "spotlight*", "spottar", "armatur*", "strömbrytar*", "uttag*", "jordfelsbrytar*", "golvvärme*", "säkring*", "kabel*", "kablar", "ledningsdrag*", "laddbox*")},
	{DomainPainting, NewKeywords("mål*", "*målning*", "färg*", "spackl*", "*spackling*", "grundmål*", "tapet*", "*tapetsering*", "lack*", "bets*", "slipning*")},
	{DomainFlooring, NewKeywords("parkett*", "laminat*", "golvläggning*", "golvslip*", "trägolv*", "vinylgolv*", "plastmatta*", "lister", "golvlist*")},
	{DomainKitchen, NewKeywords("skåp*", "*skåp*", "bänkskiv*", "kökssnickeri*", "köksmontering*", "köksinredning*", "vitvar*", "diskmaskin*", "spis*", "ugn*", "köksfläkt*", "fläkt*", "luckor", "lucka")},
	{DomainCarpentry, NewKeywords("snickeri*", "gips*", "*gips*", "regel*", "reglar*", "dörr*", "fönster*", "trall*", "altan*", "panel*", "innertak*")},
	{DomainCleaning, NewKeywords("städ*", "*städ*", "fönsterputs*", "putsning*", "rengöring*", "dammsug*", "moppning*", "skurning*")},
	{DomainGardening, NewKeywords("trädgård*", "*trädgård*", "gräs*", "*gräs*", "häck*", "träd", "trädfällning*", "plantering*", "*plantering*", "växt*", "rabatt*", "ogräs*", "kratt*", "*krattning", "beskär*", "marksten*", "stenläggning*", "buskar", "buske")},
	{DomainPreparation, NewKeywords("skydd*", "*skydd*", "täckning*", "maskering*", "etablering*", "förberedelse*")},
}

var componentTable = []componentRule{
	{ComponentTiles, NewKeywords("kakel*", "*kakel*", "klinker*", "*klinker*", "kakla*", "plattsätt*", "plattor", "fogning*")},
	{ComponentMembrane, NewKeywords("tätskikt*", "*tätskikt*", "membran*", "fuktspärr*", "våtrumsmatta*")},
	{ComponentPaint, NewKeywords("mål*", "*målning*", "färg*", "grundmål*", "lack*", "bets*")},
	{ComponentWallpaper, NewKeywords("tapet*", "*tapetsering*")},
	{ComponentSurfacePrep, NewKeywords("spackl*", "*spackling*", "slipning*", "grundning*")},
	{ComponentFixture, NewKeywords("toalett*", "wc", "handfat*", "dusch*", "*dusch*", "badkar*", "blandare*", "kommod*")},
	{ComponentPipes, NewKeywords("rör*", "*rördragning*", "avlopp*", "golvbrunn*", "vattenledning*")},
	{ComponentHeating, NewKeywords("golvvärme*")},
	{ComponentWiring, NewKeywords("kabel*", "kablar", "eldrag*", "ledningsdrag*", "elinstall*")},
	{ComponentOutlet, NewKeywords("uttag*", "eluttag*", "strömbrytar*", "laddbox*")},
	{ComponentLighting, NewKeywords("*belysning*", "spotlight*", "spottar", "armatur*", "lampa", "lampor")},
	{ComponentPanel, NewKeywords("elcentral*", "säkring*", "jordfelsbrytar*")},
	{ComponentCabinet, NewKeywords("skåp*", "*skåp*", "kökssnickeri*", "köksinredning*", "luckor", "lucka")},
	{ComponentCountertop, NewKeywords("bänkskiv*", "*bänkskiv*")},
	{ComponentAppliance, NewKeywords("vitvar*", "diskmaskin*", "spis*", "ugn*", "köksfläkt*", "fläkt*")},
	{ComponentLawn, NewKeywords("gräs*", "*gräs*")},
	{ComponentHedge, NewKeywords("häck*")},
	{ComponentTree, NewKeywords("träd", "trädfällning*", "beskär*")},
	{ComponentPlanting, NewKeywords("plantering*", "*plantering*", "växt*", "rabatt*", "buskar", "buske")},
	{ComponentPaving, NewKeywords("marksten*", "stenläggning*")},
	{ComponentWindow, NewKeywords("fönster*", "fönsterputs*")},
	{ComponentDoor, NewKeywords("dörr*")},
	{ComponentFloorCover, NewKeywords("parkett*", "laminat*", "golvläggning*", "trägolv*", "vinylgolv*", "plastmatta*")},
	{ComponentDebris, NewKeywords("bortforsling*", "avfall*", "container*", "deponi*")},
}

var surfaceTable = []surfaceRule{
	{SurfaceWall, NewKeywords("vägg*", "*vägg*")},
	{SurfaceFloor, NewKeywords("golv*", "*golv", "*golvet")},
	{SurfaceCeiling, NewKeywords("tak", "taket", "tak*", "innertak*")},
	{SurfaceFacade, NewKeywords("fasad*", "*fasad*")},
}

// jobDomains lists the domains a job category naturally belongs to; used to break ties
var jobDomains = map[string][]Domain{
	"bathroom":   {DomainTiling, DomainWaterproofing, DomainPlumbing, DomainElectrical, DomainDemolition},
	"kitchen":    {DomainKitchen, DomainElectrical, DomainPlumbing, DomainTiling, DomainDemolition},
	"painting":   {DomainPainting, DomainPreparation},
	"cleaning":   {DomainCleaning},
	"gardening":  {DomainGardening},
	"electrical": {DomainElectrical},
}
