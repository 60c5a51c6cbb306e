package merge

import (
	"fmt"
	"strings"

	"github.com/jonathan/quote-pipeline/internal/classify"
	"github.com/jonathan/quote-pipeline/internal/formula"
	"github.com/jonathan/quote-pipeline/internal/types"
)

// Materials collapses lines with the same normalized name and unit.
// The line with the larger quantity survives; order of first appearance is kept.
func Materials(materials []types.Material) ([]types.Material, []Event) {
	var out []types.Material
	var events []Event
	index := map[string]int{}
	for _, m := range materials {
		key := strings.Join(classify.Tokenize(m.Name), " ") + "|" + strings.ToLower(strings.TrimSpace(m.Unit))
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, m)
			continue
		}
		kept := out[i]
		if m.Quantity > kept.Quantity {
			kept = m
		}
		kept.Subtotal = formula.LineSubtotal(kept.Quantity, kept.PricePerUnit)
		events = append(events, Event{
			Kind:    EventMerged,
			Key:     key,
			Names:   []string{out[i].Name, m.Name},
			Message: fmt.Sprintf("material %q listed twice, kept %.2f %s", kept.Name, kept.Quantity, kept.Unit),
		})
		out[i] = kept
	}
	return out, events
}
