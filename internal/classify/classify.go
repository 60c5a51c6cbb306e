// Package classify tags work items with a domain, component and surface derived from their text.
package classify

import (
	"fmt"
	"strings"
)

const (
	// nameWeight is applied to keyword matches in the item name
	nameWeight = 2
	// descriptionWeight is applied to keyword matches in the description
	descriptionWeight = 1
)

// Classification is the ephemeral grouping tag of a single work item
type Classification struct {
	Domain    Domain    `json:"domain"`
	Component Component `json:"component"`
	Surface   Surface   `json:"surface"`
}

// Classify tags an item from its name and description.
// It is pure and deterministic; unmatched dimensions fall back to their unknown member.
func Classify(name, description, jobType string) Classification {
	nameTokens := Tokenize(name)
	descTokens := Tokenize(description)

	return Classification{
		Domain:    classifyDomain(nameTokens, descTokens, jobType),
		Component: classifyComponent(nameTokens, descTokens),
		Surface:   classifySurface(nameTokens, descTokens),
	}
}

// Key builds the canonical grouping key "{domain}:{standardID}:{component}:{surface}"
func Key(c Classification, standardID string) string {
	return fmt.Sprintf("%s:%s:%s:%s", c.Domain, standardID, c.Component, c.Surface)
}

// score weighs the best ranked keyword hit in the name above one in the description.
// A keyword hitting the first name token gets the head bonus on top.
func score(keywords Keywords, nameTokens, descTokens []string) int {
	total := 0
	if n, ok := keywords.best(nameTokens); ok {
		if _, head := keywords.best(nameTokens[:1]); head {
			n += headRank
		}
		total += n * nameWeight
	}
	if n, ok := keywords.best(descTokens); ok {
		total += n * descriptionWeight
	}
	return total
}

func classifyDomain(nameTokens, descTokens []string, jobType string) Domain {
	preferred := jobDomains[strings.ToLower(strings.TrimSpace(jobType))]

	best := DomainUnknown
	bestScore := 0
	bestPref := len(preferred) + 1
	for _, rule := range domainTable {
		s := score(rule.keywords, nameTokens, descTokens)
		if s == 0 {
			continue
		}
		pref := preferenceRank(preferred, rule.domain)
		if s > bestScore || (s == bestScore && pref < bestPref) {
			best = rule.domain
			bestScore = s
			bestPref = pref
		}
	}
	return best
}

func preferenceRank(preferred []Domain, d Domain) int {
	for i, p := range preferred {
		if p == d {
			return i
		}
	}
	return len(preferred)
}

func classifyComponent(nameTokens, descTokens []string) Component {
	best := ComponentUnknown
	bestScore := 0
	for _, rule := range componentTable {
		if s := score(rule.keywords, nameTokens, descTokens); s > bestScore {
			best = rule.component
			bestScore = s
		}
	}
	return best
}

func classifySurface(nameTokens, descTokens []string) Surface {
	best := SurfaceNone
	bestScore := 0
	for _, rule := range surfaceTable {
		if s := score(rule.keywords, nameTokens, descTokens); s > bestScore {
			best = rule.surface
			bestScore = s
		}
	}
	return best
}
