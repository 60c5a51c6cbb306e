// Package flags detects customer-supplied material and no-added-complexity signals in conversation text.
package flags

import (
	"strings"

	"github.com/jonathan/quote-pipeline/internal/classify"
	"github.com/jonathan/quote-pipeline/internal/types"
)

// Flags are the conversation signals that prune generated materials
type Flags struct {
	CustomerSuppliesMaterial bool     `json:"customer_supplies_material"`
	SuppliedCategories       []string `json:"supplied_categories,omitempty"`
	NoAddedComplexity        bool     `json:"no_added_complexity"`
	Matches                  []string `json:"matches,omitempty"`
}

// Supplies reports whether the customer supplies materials of category
func (f Flags) Supplies(category string) bool {
	if !f.CustomerSuppliesMaterial {
		return false
	}
	for _, c := range f.SuppliedCategories {
		if c == category {
			return true
		}
		if c == CategoryAll && category != CategoryConsumables {
			return true
		}
	}
	return false
}

// phrase is a consecutive whole-word token sequence
type phrase []string

func phrases(list ...string) []phrase {
	out := make([]phrase, 0, len(list))
	for _, s := range list {
		out = append(out, phrase(classify.Tokenize(s)))
	}
	return out
}

// supplyPhrases set the flag on their own
var supplyPhrases = phrases(
	"står för materialet",
	"står för material",
	"står själv för materialet",
	"står själva för materialet",
	"köper materialet själv",
	"köper allt material",
	"tillhandahåller materialet",
	"eget material",
	"egna material",
	"customer supplies",
	"supply the materials",
	"supply materials",
	"provide the materials",
	"own materials",
)

// categoryPhrases set the flag only together with a named material category
var categoryPhrases = phrases(
	"har redan köpt",
	"har köpt",
	"köper själv",
	"köper själva",
	"står för",
	"already bought",
	"have bought",
	"will buy",
)

var (
	buyWords  = classify.NewKeywords("köper", "köpa", "köpt", "införskaffar", "fixar")
	selfWords = classify.NewKeywords("själv", "själva")

	// negationWords void the loose buy+self match for the whole sentence
	negationWords = classify.NewKeywords("inte", "ej", "icke", "aldrig", "not", "never")
)

var noComplexityPhrases = phrases(
	"inga extra",
	"inget extra",
	"ingen extra komplexitet",
	"inga komplikationer",
	"inga tillval",
	"enkelt utförande",
	"standardutförande",
	"inga överraskningar",
	"no added complexity",
	"nothing extra",
	"no complications",
	"no extras",
)

// Detect scans description and conversation for the two signals.
// Detection is conservative; a negated phrase such as "står inte för" does not match.
func Detect(description string, conversation []types.Message) Flags {
	var f Flags
	categories := map[string]bool{}

	texts := append([]string{description}, contents(conversation)...)
	for _, text := range texts {
		for _, sentence := range sentences(text) {
			tokens := classify.Tokenize(sentence)
			if len(tokens) == 0 {
				continue
			}
			named := categoriesIn(tokens)

			if p, ok := firstPhrase(tokens, supplyPhrases); ok {
				f.CustomerSuppliesMaterial = true
				f.Matches = append(f.Matches, p)
				if len(named) == 0 {
					categories[CategoryAll] = true
				}
				for _, c := range named {
					categories[c] = true
				}
			} else if len(named) > 0 {
				p, ok := firstPhrase(tokens, categoryPhrases)
				if !ok && buyWords.Match(tokens) && selfWords.Match(tokens) && !negationWords.Match(tokens) {
					p, ok = "köper ... själv", true
				}
				if ok {
					f.CustomerSuppliesMaterial = true
					f.Matches = append(f.Matches, p)
					for _, c := range named {
						categories[c] = true
					}
				}
			}

			if p, ok := firstPhrase(tokens, noComplexityPhrases); ok {
				f.NoAddedComplexity = true
				f.Matches = append(f.Matches, p)
			}
		}
	}

	f.SuppliedCategories = sortedCategories(categories)
	return f
}

// FilterMaterials drops materials the customer supplies and, under NoAddedComplexity,
// unspecified contingency lines. It returns the kept lines and the names removed.
func FilterMaterials(materials []types.Material, f Flags) ([]types.Material, []string) {
	kept := make([]types.Material, 0, len(materials))
	var removed []string
	for _, m := range materials {
		if f.Supplies(MaterialCategory(m.Name)) || (f.NoAddedComplexity && IsContingency(m.Name)) {
			removed = append(removed, m.Name)
			continue
		}
		kept = append(kept, m)
	}
	return kept, removed
}

func contents(conversation []types.Message) []string {
	out := make([]string, 0, len(conversation))
	for _, msg := range conversation {
		out = append(out, msg.Content)
	}
	return out
}

func sentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == '\n' || r == ';'
	})
}

func firstPhrase(tokens []string, list []phrase) (string, bool) {
	for _, p := range list {
		if classify.ContainsPhrase(tokens, p) {
			return strings.Join(p, " "), true
		}
	}
	return "", false
}

// sortedCategories returns the set in table order, CategoryAll first
func sortedCategories(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	var out []string
	if set[CategoryAll] {
		out = append(out, CategoryAll)
	}
	for _, rule := range materialCategories {
		if set[rule.category] {
			out = append(out, rule.category)
		}
	}
	return out
}
