package draft

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// unitSuffixes are stripped from numeric strings, longest first
var unitSuffixes = []string{"kr/h", "kr/tim", ":-", "sek", "kr", "tim", "st", "m2", "m²", "h", "l"}

// toNumber accepts JSON numbers and Swedish or English formatted strings
// such as "1 200,50", "1,200.50", "650 kr" or "7,5 h".
func toNumber(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		return n.Float64()
	case float64:
		return n, nil
	case string:
		return ParseAmount(n)
	case bool:
		return 0, fmt.Errorf("expected a number, got %t", n)
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

// ParseAmount parses a human-formatted number
func ParseAmount(s string) (float64, error) {
	orig := s
	s = strings.ToLower(strings.TrimSpace(s))
	for _, suffix := range unitSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
			break
		}
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\u202f' || r == '\'' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, fmt.Errorf("cannot parse %q as a number", orig)
	}

	s = normalizeSeparators(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as a number", orig)
	}
	return f, nil
}

// normalizeSeparators converts thousands and decimal separators to Go syntax.
// The last of ',' and '.' is the decimal separator when both occur. A single ','
// is decimal; repeated commas or dots group thousands.
func normalizeSeparators(s string) string {
	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")

	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	default:
		return s
	}
}
