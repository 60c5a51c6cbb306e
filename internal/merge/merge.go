// Package merge groups and merges duplicate quote lines.
package merge

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jonathan/quote-pipeline/internal/classify"
	"github.com/jonathan/quote-pipeline/internal/formula"
	"github.com/jonathan/quote-pipeline/internal/jobs"
	"github.com/jonathan/quote-pipeline/internal/types"
)

// FuzzyThreshold is the minimum token Jaccard similarity for joining two groups by name
const FuzzyThreshold = 0.5

// Event kinds
const (
	EventMerged = "merged"
	EventClamp  = "clamped"
	EventSplit  = "split"
)

// Event is one entry of the merge log
type Event struct {
	Kind    string   `json:"kind"`
	Key     string   `json:"key"`
	Names   []string `json:"names"`
	Message string   `json:"message"`
}

// Context carries what the merge engine needs to know about the job
type Context struct {
	Definition jobs.JobDefinition
	UnitQty    float64
}

// Result is the merged item list and its log
type Result struct {
	Items  []types.WorkItem
	Events []Event
}

// Messages returns the event messages in order
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Message)
	}
	return out
}

type member struct {
	index int
	item  types.WorkItem
	class classify.Classification
	std   *jobs.Standard
}

type group struct {
	key     string
	members []member
	tokens  map[string]bool
}

func (g *group) standard() *jobs.Standard {
	for _, m := range g.members {
		if m.std != nil {
			return m.std
		}
	}
	return nil
}

// WorkItems merges duplicate work items. Items are grouped by canonical key,
// groups with similar names are joined, and every group is then re-split by
// classified domain so items of different trades never merge. Output keeps the
// order of first appearance.
func WorkItems(items []types.WorkItem, ctx Context) Result {
	var groups []*group
	byKey := map[string]*group{}
	for i, item := range items {
		m := newMember(i, item, ctx.Definition)
		key := canonicalKey(m)
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key, tokens: map[string]bool{}}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, m)
		for _, tok := range significantTokens(item.Name) {
			g.tokens[tok] = true
		}
	}

	groups = joinSimilar(groups)

	var result Result
	var final []*group
	for _, g := range groups {
		parts := splitByDomain(g)
		if len(parts) > 1 {
			result.Events = append(result.Events, Event{
				Kind:    EventSplit,
				Key:     g.key,
				Names:   names(g.members),
				Message: fmt.Sprintf("kept %s apart: different trades", quoteList(names(g.members))),
			})
		}
		final = append(final, parts...)
	}
	sort.SliceStable(final, func(i, j int) bool {
		return final[i].members[0].index < final[j].members[0].index
	})

	for _, g := range final {
		if len(g.members) == 1 {
			result.Items = append(result.Items, g.members[0].item)
			continue
		}
		merged, events := mergeGroup(g, ctx.UnitQty)
		result.Items = append(result.Items, merged)
		result.Events = append(result.Events, events...)
	}
	return result
}

func newMember(index int, item types.WorkItem, def jobs.JobDefinition) member {
	m := member{index: index, item: item, class: classify.Classify(item.Name, item.Description, string(def.Category))}
	if std, ok := def.MatchStandard(m.class); ok {
		m.std = &std
	}
	return m
}

// canonicalKey is "{domain}:{standard}:{component}:{surface}". Items the classifier
// cannot place are keyed on their normalized name instead.
func canonicalKey(m member) string {
	if m.class.Domain == classify.DomainUnknown || (m.std == nil && m.class.Component == classify.ComponentUnknown) {
		return "name:" + strings.Join(classify.Tokenize(m.item.Name), " ")
	}
	stdID := ""
	if m.std != nil {
		stdID = m.std.ID
	}
	return classify.Key(m.class, stdID)
}

// joinSimilar folds each group into the first earlier group with a similar name
// and no conflicting standard
func joinSimilar(groups []*group) []*group {
	var out []*group
	for _, g := range groups {
		joined := false
		for _, target := range out {
			if conflicting(target.standard(), g.standard()) {
				continue
			}
			if jaccard(target.tokens, g.tokens) >= FuzzyThreshold {
				target.members = append(target.members, g.members...)
				for tok := range g.tokens {
					target.tokens[tok] = true
				}
				joined = true
				break
			}
		}
		if !joined {
			out = append(out, g)
		}
	}
	return out
}

func conflicting(a, b *jobs.Standard) bool {
	return a != nil && b != nil && a.ID != b.ID
}

// splitByDomain partitions a group by classified domain in order of first appearance
func splitByDomain(g *group) []*group {
	var parts []*group
	byDomain := map[classify.Domain]*group{}
	for _, m := range g.members {
		part, ok := byDomain[m.class.Domain]
		if !ok {
			part = &group{key: g.key, tokens: g.tokens}
			byDomain[m.class.Domain] = part
			parts = append(parts, part)
		}
		part.members = append(part.members, m)
	}
	return parts
}

func mergeGroup(g *group, qty float64) (types.WorkItem, []Event) {
	sum := 0.0
	weighted := 0.0
	maxRate := 0.0
	description := ""
	parts := make([]string, 0, len(g.members))
	for _, m := range g.members {
		sum += m.item.Hours
		weighted += m.item.Hours * m.item.HourlyRate
		maxRate = math.Max(maxRate, m.item.HourlyRate)
		if len(m.item.Description) > len(description) {
			description = m.item.Description
		}
		parts = append(parts, fmt.Sprintf("%s (%.1f h)", m.item.Name, m.item.Hours))
	}
	sum = formula.RoundHours(sum)

	rate := maxRate
	if sum > 0 {
		rate = math.Round(weighted / sum)
	}

	std := g.standard()
	name := chooseName(g, std)
	hours := sum
	reasoning := fmt.Sprintf("merged %s = %.1f h", strings.Join(parts, " + "), sum)

	events := []Event{{
		Kind:    EventMerged,
		Key:     g.key,
		Names:   names(g.members),
		Message: fmt.Sprintf("merged %s into %q (%.1f h)", quoteList(names(g.members)), name, sum),
	}}

	if std != nil {
		lo, hi := std.Range(qty)
		clamped := hours
		switch {
		case hours > hi:
			clamped = hi
		case hours < lo:
			clamped = lo
		}
		clamped = formula.RoundHours(clamped)
		if clamped != hours {
			note := fmt.Sprintf("clamped %.1f h to %.1f h (standard %s allows %.1f–%.1f h)", hours, clamped, std.ID, lo, hi)
			reasoning += "; " + note
			events = append(events, Event{
				Kind:    EventClamp,
				Key:     g.key,
				Names:   []string{name},
				Message: fmt.Sprintf("%q: %s", name, note),
			})
			hours = clamped
		}
	}

	return types.WorkItem{
		Name:        name,
		Description: description,
		Reasoning:   reasoning,
		Hours:       hours,
		HourlyRate:  rate,
		Subtotal:    formula.LineSubtotal(hours, rate),
	}, events
}

// chooseName prefers the trade's friendly name, then the standard id, then the longest raw name
func chooseName(g *group, std *jobs.Standard) string {
	if name, ok := FriendlyName(g.members[0].class); ok {
		return name
	}
	if std != nil {
		return std.ID
	}
	longest := ""
	for _, m := range g.members {
		if len([]rune(m.item.Name)) > len([]rune(longest)) {
			longest = m.item.Name
		}
	}
	return longest
}

func names(members []member) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.item.Name)
	}
	return out
}

func quoteList(list []string) string {
	quoted := make([]string, 0, len(list))
	for _, s := range list {
		quoted = append(quoted, fmt.Sprintf("%q", s))
	}
	return strings.Join(quoted, ", ")
}
