package pipeline

import (
	"fmt"
	"strings"

	"github.com/jonathan/quote-pipeline/internal/classify"
	"github.com/jonathan/quote-pipeline/internal/deduction"
	"github.com/jonathan/quote-pipeline/internal/draft"
	"github.com/jonathan/quote-pipeline/internal/flags"
	"github.com/jonathan/quote-pipeline/internal/formula"
	"github.com/jonathan/quote-pipeline/internal/jobs"
	"github.com/jonathan/quote-pipeline/internal/mathguard"
	"github.com/jonathan/quote-pipeline/internal/merge"
	"github.com/jonathan/quote-pipeline/internal/pipeline/steps"
	"github.com/jonathan/quote-pipeline/internal/types"
	"github.com/jonathan/quote-pipeline/internal/validation"
)

// state is the per-run context the stages read and the intake stages fill in
type state struct {
	req   *types.QuoteRequest
	opts  Options
	runID string

	def        jobs.JobDefinition
	params     formula.Params
	flags      flags.Flags
	validation types.ValidationResult
	trace      []string
}

// stageFunc takes a quote snapshot and returns a new snapshot plus trace lines.
// The input snapshot is never modified.
type stageFunc func(st *state, q *types.Quote) (*types.Quote, []string)

type stage struct {
	name string
	run  stageFunc
}

var stages = []stage{
	{steps.ClassifyJob, classifyJob},
	{steps.ApplyDefaults, applyDefaults},
	{steps.DetectFlags, detectFlags},
	{steps.GenerateItems, generateItems},
	{steps.MergeItems, mergeItems},
	{steps.ValidateQuote, validateQuote},
	{steps.RemergeItems, remergeItems},
	{steps.RecomputeTotals, recomputeTotals},
	{steps.FilterMaterials, filterMaterials},
	{steps.ResolveDeduction, resolveDeduction},
	{steps.MathGuard, enforceMath},
}

func classifyJob(st *state, _ *types.Quote) (*types.Quote, []string) {
	text := st.req.Description
	if strings.TrimSpace(text) == "" {
		text = st.req.ConversationText()
	}
	def := st.opts.Registry.Find(st.req.JobType, text)
	st.def = def

	out := &types.Quote{
		JobType:            def.JobType,
		Category:           string(def.Category),
		Unit:               string(def.UnitType),
		WorkItems:          []types.WorkItem{},
		Materials:          []types.Material{},
		Equipment:          []types.Material{},
		Assumptions:        []string{},
		ValidationWarnings: []string{},
	}

	if def.JobType == st.opts.Registry.Fallback().JobType {
		if st.req.JobType != "" {
			return out, []string{fmt.Sprintf("job type %q not recognized, using the generic definition", st.req.JobType)}
		}
		return out, []string{"no job type matched the description, using the generic definition"}
	}
	return out, []string{fmt.Sprintf("classified as %s (%s)", def.JobType, def.Name)}
}

func applyDefaults(st *state, q *types.Quote) (*types.Quote, []string) {
	def := st.def
	req := st.req
	var lines []string

	size := def.SizeFor(jobs.Size{Area: req.Area, Quantity: req.Quantity, Rooms: req.Rooms, Length: req.Length})
	if size <= 0 {
		size = def.Defaults.UnitQty
		lines = append(lines, fmt.Sprintf("no size in %s given, assuming %g %s", def.UnitType, size, def.UnitType))
	}

	complexity := jobs.ParseComplexity(req.Complexity)
	if req.Complexity == "" {
		complexity = def.Defaults.Complexity
		lines = append(lines, fmt.Sprintf("complexity not given, assuming %s", complexity))
	}
	quality := jobs.ParseTier(req.Quality)
	if req.Quality == "" {
		quality = def.Defaults.Quality
		lines = append(lines, fmt.Sprintf("quality not given, assuming %s", quality))
	}

	st.params = formula.Params{
		UnitQty:    size,
		Quantity:   req.Quantity,
		Area:       req.Area,
		Complexity: complexity,
		Quality:    quality,
		Region:     req.Region,
		Season:     req.Season,
		HourlyRate: req.HourlyRate,
	}
	if req.HourlyRate <= 0 {
		lines = append(lines, fmt.Sprintf("no hourly rate given, using typical %.0f kr/h", def.HourlyRate.Typical))
	}

	out := q.Clone()
	out.UnitQty = size
	return out, lines
}

func detectFlags(st *state, q *types.Quote) (*types.Quote, []string) {
	f := flags.Detect(st.req.Description, st.req.Conversation)
	st.flags = f

	var lines []string
	if f.CustomerSuppliesMaterial {
		lines = append(lines, fmt.Sprintf("customer supplies material (%s)", strings.Join(f.SuppliedCategories, ", ")))
	}
	if f.NoAddedComplexity {
		lines = append(lines, "customer asked for no added complexity")
	}
	return q.Clone(), lines
}

// generateItems combines the draft with the formula engine. Draft work items are
// kept when present, otherwise the job's standard items are generated. Calculated
// materials replace draft materials of the same name.
func generateItems(st *state, q *types.Quote) (*types.Quote, []string) {
	out := q.Clone()
	rate := formula.ResolveRate(st.params, st.def)
	var lines []string

	d, warnings := draft.Sanitize(st.req.Draft)
	st.opts.Metrics.AddDraftWarnings(len(warnings))
	for _, w := range warnings {
		lines = append(lines, "draft: "+w)
	}

	if len(d.WorkItems) > 0 {
		for _, item := range d.WorkItems {
			if item.HourlyRate <= 0 {
				item.HourlyRate = rate
				lines = append(lines, fmt.Sprintf("draft item %q has no hourly rate, using %.0f kr/h", item.Name, rate))
			}
			out.WorkItems = append(out.WorkItems, item)
		}
		lines = append(lines, fmt.Sprintf("using %d work items from the draft", len(d.WorkItems)))
	} else {
		out.WorkItems = formula.GenerateWorkItems(st.params, st.def)
		lines = append(lines, fmt.Sprintf("generated %d work items from the %s template", len(out.WorkItems), st.def.JobType))
	}

	calculated, calcWarnings := formula.GenerateMaterials(st.params, st.def, st.opts.Logger)
	lines = append(lines, calcWarnings...)

	byName := map[string]bool{}
	for _, m := range calculated {
		byName[materialKey(m.Name)] = true
	}
	for _, m := range d.Materials {
		if byName[materialKey(m.Name)] {
			lines = append(lines, fmt.Sprintf("draft material %q replaced by calculated quantity", m.Name))
			continue
		}
		out.Materials = append(out.Materials, m)
	}
	out.Materials = append(out.Materials, calculated...)
	out.Equipment = append(out.Equipment, d.Equipment...)
	if len(calculated) > 0 {
		lines = append(lines, fmt.Sprintf("calculated %d materials at %s quality", len(calculated), st.params.Quality))
	}

	return formula.CalculateTotals(out), lines
}

func materialKey(name string) string {
	return strings.Join(classify.Tokenize(name), " ")
}

func mergeItems(st *state, q *types.Quote) (*types.Quote, []string) {
	return st.merge(q, "")
}

// remergeItems folds duplicates auto-fix may have introduced
func remergeItems(st *state, q *types.Quote) (*types.Quote, []string) {
	return st.merge(q, "second merge: ")
}

func (st *state) merge(q *types.Quote, prefix string) (*types.Quote, []string) {
	out := q.Clone()
	res := merge.WorkItems(q.WorkItems, merge.Context{Definition: st.def, UnitQty: st.params.UnitQty})
	materials, materialEvents := merge.Materials(q.Materials)
	equipment, equipmentEvents := merge.Materials(q.Equipment)

	out.WorkItems = res.Items
	out.Materials = materials
	out.Equipment = equipment

	events := append(append(res.Events, materialEvents...), equipmentEvents...)
	lines := make([]string, 0, len(events))
	for _, e := range events {
		st.opts.Metrics.AddMergeEvent(e.Kind)
		lines = append(lines, prefix+e.Message)
	}
	return formula.CalculateTotals(out), lines
}

func validateQuote(st *state, q *types.Quote) (*types.Quote, []string) {
	v := validation.New(st.def)
	size := st.params.UnitQty

	var out *types.Quote
	var res types.ValidationResult
	if st.opts.AutoFix {
		out, res = validation.AutoFix(v, q, size, st.flags, formula.ResolveRate(st.params, st.def))
	} else {
		out, res = q.Clone(), v.Validate(q, size, st.flags)
	}
	st.validation = res

	// auto-fix notes are trace lines, not quote data yet
	lines := append([]string{}, out.Assumptions[len(q.Assumptions):]...)
	out.Assumptions = q.Assumptions

	report := res.AutoFix
	if report != nil && (len(report.AddedItems) > 0 || !report.Succeeded) {
		st.opts.Metrics.ObserveAutoFix(res.Family, report.Succeeded)
	}
	// a failed auto-fix has already annotated its remaining errors
	if report == nil || len(report.Remaining) == 0 {
		out.ValidationWarnings = append(out.ValidationWarnings, res.Errors...)
	}
	out.ValidationWarnings = append(out.ValidationWarnings, res.Warnings...)

	if res.Passed {
		lines = append(lines, fmt.Sprintf("validation (%s) passed with %d warnings", res.Family, len(res.Warnings)))
	} else {
		lines = append(lines, fmt.Sprintf("validation (%s) failed: %d blocking errors, %d warnings", res.Family, len(res.Errors), len(res.Warnings)))
	}
	return out, lines
}

func recomputeTotals(_ *state, q *types.Quote) (*types.Quote, []string) {
	out := formula.CalculateTotals(q)
	return out, []string{fmt.Sprintf("totals recomputed: %.0f kr before VAT", out.Summary.TotalBeforeVAT)}
}

func filterMaterials(st *state, q *types.Quote) (*types.Quote, []string) {
	out := q.Clone()
	kept, removed := flags.FilterMaterials(q.Materials, st.flags)
	out.Materials = kept

	lines := make([]string, 0, len(removed))
	for _, name := range removed {
		if st.flags.Supplies(flags.MaterialCategory(name)) {
			lines = append(lines, fmt.Sprintf("removed material %q: supplied by the customer", name))
		} else {
			lines = append(lines, fmt.Sprintf("removed contingency line %q", name))
		}
	}
	return formula.CalculateTotals(out), lines
}

func resolveDeduction(st *state, q *types.Quote) (*types.Quote, []string) {
	out := q.Clone()
	r := deduction.Resolve(st.def.Deduction, st.opts.Now)
	if st.opts.CapDeduction {
		r = deduction.ResolveCapped(st.def.Deduction, st.opts.Now)
	}
	out.DeductionType = string(r.Kind)
	out.DeductionRate = r.Rate
	out.DeductionCap = r.Cap
	out.Summary.DeductionAmount = r.Amount(out.Summary.WorkCost)
	out.Summary.CustomerPays = deduction.CustomerPays(out.Summary.TotalWithVAT, out.Summary.DeductionAmount)

	if r.Kind == deduction.KindNone {
		return out, []string{"no tax deduction applies"}
	}
	line := fmt.Sprintf("%s deduction %.0f%% of work cost on %s: %.0f kr",
		r.Kind, r.Rate*100, st.opts.Now.Format("2006-01-02"), out.Summary.DeductionAmount)
	if r.Cap > 0 {
		line += fmt.Sprintf(" (capped at %.0f kr)", r.Cap)
	}
	return out, []string{line}
}

func enforceMath(st *state, q *types.Quote) (*types.Quote, []string) {
	out, corrections := mathguard.Enforce(q)
	st.opts.Metrics.AddCorrections(len(corrections))

	lines := make([]string, 0, len(corrections))
	for _, c := range corrections {
		lines = append(lines, fmt.Sprintf("math guard corrected %s: %.2f -> %.2f (%.2f%% drift)", c.Field, c.Before, c.After, c.DriftPercent))
	}
	return out, lines
}
