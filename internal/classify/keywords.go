package classify

import (
	"strings"
	"unicode"
)

// matchKind controls how a keyword is compared against a single token
type matchKind int

const (
	matchWord   matchKind = iota // token must equal the keyword
	matchPrefix                  // token must start with the keyword ("kakel*")
	matchInfix                   // token must contain the keyword ("*städ*")
	matchSuffix                  // token must end with the keyword ("*golv")
	matchMarker                  // whole-word trade marker ("!el")
)

// Keyword is one entry of a declarative keyword table.
// Matching is always against whole tokens, never across token boundaries,
// so the word "el" does not match inside "kakel".
type Keyword struct {
	Text string
	kind matchKind
}

// ParseKeyword converts table notation into a Keyword:
// "el" is a whole word, "!el" a whole-word trade marker, "kakel*" a word stem,
// "*städ*" a compound part and "*golv" a compound head.
func ParseKeyword(s string) Keyword {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "!") && len(s) > 1:
		return Keyword{Text: s[1:], kind: matchMarker}
	case strings.HasPrefix(s, "*") && strings.HasSuffix(s, "*") && len(s) > 2:
		return Keyword{Text: s[1 : len(s)-1], kind: matchInfix}
	case strings.HasSuffix(s, "*") && len(s) > 1:
		return Keyword{Text: s[:len(s)-1], kind: matchPrefix}
	case strings.HasPrefix(s, "*") && len(s) > 1:
		return Keyword{Text: s[1:], kind: matchSuffix}
	default:
		return Keyword{Text: s, kind: matchWord}
	}
}

// MatchToken reports whether the keyword matches a single lower-cased token
func (k Keyword) MatchToken(token string) bool {
	switch k.kind {
	case matchPrefix:
		return strings.HasPrefix(token, k.Text)
	case matchInfix:
		return strings.Contains(token, k.Text)
	case matchSuffix:
		return strings.HasSuffix(token, k.Text)
	default:
		return token == k.Text
	}
}

// IsMarker reports whether the keyword names a trade outright
func (k Keyword) IsMarker() bool {
	return k.kind == matchMarker
}

// Keywords is a parsed keyword list
type Keywords []Keyword

// NewKeywords parses a list of keyword notations
func NewKeywords(list ...string) Keywords {
	out := make(Keywords, 0, len(list))
	for _, s := range list {
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, ParseKeyword(s))
	}
	return out
}

// Match reports whether any keyword matches any token
func (ks Keywords) Match(tokens []string) bool {
	_, ok := ks.best(tokens)
	return ok
}

const (
	// markerRank lifts a trade marker above every other hit, so an explicit
	// "el" outranks "kakel" inside the same item
	markerRank = 100
	// headRank lifts a hit on the first token of a name, which is usually the
	// action ("Måla luckor", "Kakelsättning bakom wc")
	headRank = 50
)

// best ranks the most specific keyword that matches any token. Trade markers
// outrank everything else; otherwise the longer keyword wins, so
// "fönsterputs" outranks "fönster".
func (ks Keywords) best(tokens []string) (int, bool) {
	top := 0
	found := false
	for _, k := range ks {
		for _, tok := range tokens {
			if !k.MatchToken(tok) {
				continue
			}
			found = true
			if r := k.rank(); r > top {
				top = r
			}
			break
		}
	}
	return top, found
}

func (k Keyword) rank() int {
	n := len([]rune(k.Text))
	if k.kind == matchMarker {
		return markerRank + n
	}
	return n
}

// Tokenize lower-cases text and splits it on every rune that is neither a letter nor a digit.
// Hyphenated compounds such as "El-installation" become separate tokens.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ContainsPhrase reports whether the phrase tokens occur consecutively in tokens
func ContainsPhrase(tokens []string, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		matched := true
		for j, p := range phrase {
			if tokens[i+j] != p {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}
