// Package draft turns the generative model's output into a typed draft.
// Everything except non-JSON input is tolerated: bad fields become warnings.
package draft

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/quote-pipeline/internal/llm"
	"github.com/jonathan/quote-pipeline/internal/schemas"
	"github.com/jonathan/quote-pipeline/internal/types"
)

// Alternate keys the model is known to use
var (
	workItemKeys  = []string{"work_items", "workItems", "work", "arbete"}
	materialKeys  = []string{"materials", "material"}
	equipmentKeys = []string{"equipment", "utrustning"}
	noteKeys      = []string{"notes", "assumptions"}

	nameKeys        = []string{"name", "title", "namn"}
	descriptionKeys = []string{"description", "beskrivning"}
	reasoningKeys   = []string{"reasoning", "motivation"}
	hoursKeys       = []string{"hours", "timmar", "time"}
	rateKeys        = []string{"hourly_rate", "hourlyRate", "rate", "timpris"}
	quantityKeys    = []string{"quantity", "qty", "amount", "antal"}
	unitKeys        = []string{"unit", "enhet"}
	priceKeys       = []string{"price_per_unit", "pricePerUnit", "unit_price", "price", "pris"}
	subtotalKeys    = []string{"subtotal", "total", "summa"}
)

// Result is a decoded draft plus everything that had to be repaired
type Result struct {
	Draft    *types.Draft
	Warnings []string
}

// Parse decodes a raw model response.
// Markdown fences and surrounding prose are stripped first. Schema violations,
// unparseable amounts, missing names and negative values become warnings.
func Parse(raw string) (*Result, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if strings.TrimSpace(cleaned) == "" {
		return nil, &ParseError{Message: "empty draft"}
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Message: "draft is not valid JSON", Cause: err}
	}

	res := &Result{Draft: &types.Draft{}}

	if err := schemas.ValidateDraft(cleaned); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			for _, msg := range verr.Messages() {
				res.warn("schema: %s", msg)
			}
		} else {
			res.warn("schema check skipped: %v", err)
		}
	}

	switch v := doc.(type) {
	case map[string]any:
		res.decode(v)
	case []any:
		// a bare list is a list of work items
		res.Draft.WorkItems = res.workItems(v)
	default:
		return nil, &ParseError{Message: fmt.Sprintf("draft must be an object, got %T", doc)}
	}

	return res, nil
}

// Sanitize applies the same repairs to an already typed draft
func Sanitize(d *types.Draft) (*types.Draft, []string) {
	if d == nil {
		return &types.Draft{}, nil
	}
	res := &Result{Draft: &types.Draft{Notes: append([]string(nil), d.Notes...)}}
	for i, item := range d.WorkItems {
		item.Name = res.name(item.Name, item.Description, "Arbetsmoment", i)
		item.Hours = res.nonNegative(item.Name, "hours", item.Hours)
		item.HourlyRate = res.nonNegative(item.Name, "hourly_rate", item.HourlyRate)
		res.Draft.WorkItems = append(res.Draft.WorkItems, item)
	}
	res.Draft.Materials = res.sanitizeMaterials(d.Materials, "Material")
	res.Draft.Equipment = res.sanitizeMaterials(d.Equipment, "Utrustning")
	return res.Draft, res.Warnings
}

func (r *Result) sanitizeMaterials(in []types.Material, fallback string) []types.Material {
	var out []types.Material
	for i, m := range in {
		m.Name = r.name(m.Name, "", fallback, i)
		m.Quantity = r.nonNegative(m.Name, "quantity", m.Quantity)
		m.PricePerUnit = r.nonNegative(m.Name, "price_per_unit", m.PricePerUnit)
		out = append(out, m)
	}
	return out
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) decode(obj map[string]any) {
	if list, ok := lookupList(obj, workItemKeys); ok {
		r.Draft.WorkItems = r.workItems(list)
	}
	if list, ok := lookupList(obj, materialKeys); ok {
		r.Draft.Materials = r.materials(list, "Material")
	}
	if list, ok := lookupList(obj, equipmentKeys); ok {
		r.Draft.Equipment = r.materials(list, "Utrustning")
	}
	if list, ok := lookupList(obj, noteKeys); ok {
		for _, n := range list {
			if s, ok := n.(string); ok && strings.TrimSpace(s) != "" {
				r.Draft.Notes = append(r.Draft.Notes, strings.TrimSpace(s))
			}
		}
	}
}

func (r *Result) workItems(list []any) []types.WorkItem {
	var out []types.WorkItem
	for i, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			r.warn("work item %d is not an object, skipped", i+1)
			continue
		}
		item := types.WorkItem{
			Description: lookupString(obj, descriptionKeys),
			Reasoning:   lookupString(obj, reasoningKeys),
		}
		item.Name = r.name(lookupString(obj, nameKeys), item.Description, "Arbetsmoment", i)
		item.Hours = r.nonNegative(item.Name, "hours", r.amount(obj, item.Name, hoursKeys))
		item.HourlyRate = r.nonNegative(item.Name, "hourly_rate", r.amount(obj, item.Name, rateKeys))
		item.Subtotal = r.amount(obj, item.Name, subtotalKeys)
		out = append(out, item)
	}
	return out
}

func (r *Result) materials(list []any, fallback string) []types.Material {
	var out []types.Material
	for i, entry := range list {
		obj, ok := entry.(map[string]any)
		if !ok {
			r.warn("%s %d is not an object, skipped", strings.ToLower(fallback), i+1)
			continue
		}
		m := types.Material{Unit: lookupString(obj, unitKeys)}
		m.Name = r.name(lookupString(obj, nameKeys), "", fallback, i)
		m.Quantity = r.nonNegative(m.Name, "quantity", r.amount(obj, m.Name, quantityKeys))
		m.PricePerUnit = r.nonNegative(m.Name, "price_per_unit", r.amount(obj, m.Name, priceKeys))
		m.Subtotal = r.amount(obj, m.Name, subtotalKeys)
		out = append(out, m)
	}
	return out
}

// name falls back to the description, then to a numbered placeholder
func (r *Result) name(name, description, fallback string, index int) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if description = strings.TrimSpace(description); description != "" {
		r.warn("item %d has no name, using its description", index+1)
		return description
	}
	placeholder := fmt.Sprintf("%s %d", fallback, index+1)
	r.warn("item %d has no name, using %q", index+1, placeholder)
	return placeholder
}

func (r *Result) nonNegative(name, field string, v float64) float64 {
	if v < 0 {
		r.warn("%s: negative %s %g clamped to 0", name, field, v)
		return 0
	}
	return v
}

func (r *Result) amount(obj map[string]any, name string, keys []string) float64 {
	v, ok := lookup(obj, keys)
	if !ok || v == nil {
		return 0
	}
	n, err := toNumber(v)
	if err != nil {
		r.warn("%s: %v", name, err)
		return 0
	}
	return n
}

func lookup(obj map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func lookupString(obj map[string]any, keys []string) string {
	v, ok := lookup(obj, keys)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	default:
		return ""
	}
}

func lookupList(obj map[string]any, keys []string) ([]any, bool) {
	v, ok := lookup(obj, keys)
	if !ok {
		return nil, false
	}
	list, ok := v.([]any)
	return list, ok
}
