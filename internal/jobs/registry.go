package jobs

import (
	"strings"

	"github.com/jonathan/quote-pipeline/internal/classify"
)

// Registry is a read-only lookup over job definitions.
// It is built once and may be shared across goroutines without locking.
type Registry struct {
	defs     []JobDefinition
	keywords []classify.Keywords
	fallback JobDefinition
}

var defaultRegistry = NewRegistry(catalog(), generic())

// Default returns the built-in catalog
func Default() *Registry {
	return defaultRegistry
}

// NewRegistry builds a registry over defs; fallback is returned for unmatched input
func NewRegistry(defs []JobDefinition, fallback JobDefinition) *Registry {
	r := &Registry{
		defs:     defs,
		keywords: make([]classify.Keywords, len(defs)),
		fallback: fallback,
	}
	for i, d := range defs {
		r.keywords[i] = classify.NewKeywords(d.Keywords...)
	}
	return r
}

// Lookup returns the definition whose job type or category equals jobType
func (r *Registry) Lookup(jobType string) (JobDefinition, bool) {
	key := strings.ToLower(strings.TrimSpace(jobType))
	if key == "" {
		return JobDefinition{}, false
	}
	for _, d := range r.defs {
		if d.JobType == key || string(d.Category) == key {
			return d, true
		}
	}
	if key == r.fallback.JobType || key == string(r.fallback.Category) {
		return r.fallback, true
	}
	return JobDefinition{}, false
}

// Find resolves a job-type hint and a description to a definition.
// The hint is tried first, then the description; it never fails and
// returns the generic fallback when nothing matches.
func (r *Registry) Find(hint, description string) JobDefinition {
	if d, ok := r.Lookup(hint); ok {
		return d
	}
	if d, ok := r.match(classify.Tokenize(hint)); ok {
		return d
	}
	if d, ok := r.match(classify.Tokenize(description)); ok {
		return d
	}
	return r.fallback
}

// match scores each definition by the number of tokens any of its keywords match.
// On a tie a trade beats a room, then catalog order decides.
func (r *Registry) match(tokens []string) (JobDefinition, bool) {
	bestIdx := -1
	bestScore := 0
	for i, kws := range r.keywords {
		score := 0
		for _, tok := range tokens {
			if kws.Match([]string{tok}) {
				score++
			}
		}
		if score == 0 {
			continue
		}
		if score > bestScore || (score == bestScore && r.defs[bestIdx].Category.RoomScoped() && !r.defs[i].Category.RoomScoped()) {
			bestIdx = i
			bestScore = score
		}
	}
	if bestIdx < 0 {
		return JobDefinition{}, false
	}
	return r.defs[bestIdx], true
}

// Fallback returns the generic definition
func (r *Registry) Fallback() JobDefinition {
	return r.fallback
}

// All lists every definition, the fallback last
func (r *Registry) All() []JobDefinition {
	out := make([]JobDefinition, 0, len(r.defs)+1)
	out = append(out, r.defs...)
	return append(out, r.fallback)
}
