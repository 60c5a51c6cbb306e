// Package deduction resolves the Swedish ROT and RUT labour tax deductions.
package deduction

import (
	"math"
	"strings"
	"time"
)

// Kind is the deduction scheme a job qualifies for
type Kind string

// Deduction schemes
const (
	KindNone Kind = "none"
	KindROT  Kind = "ROT"
	KindRUT  Kind = "RUT"
)

// Rates, and the statutory caps per person and year applied by ResolveCapped
const (
	ROTElevatedRate = 0.50
	ROTStandardRate = 0.30
	RUTRate         = 0.50

	ROTCap = 50000.0
	RUTCap = 75000.0
)

// ROTCutover is the first day the standard ROT rate applies
var ROTCutover = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// Resolution is the rate and cap that apply to a quote at a given date.
// A zero Cap leaves the amount unlimited.
type Resolution struct {
	Kind Kind    `json:"kind"`
	Rate float64 `json:"rate"`
	Cap  float64 `json:"cap"`
}

// ParseKind maps free text ("rot", "RUT", "") to a Kind
func ParseKind(s string) Kind {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ROT":
		return KindROT
	case "RUT":
		return KindRUT
	default:
		return KindNone
	}
}

// Resolve returns the uncapped deduction rate for kind on the date at
func Resolve(kind Kind, at time.Time) Resolution {
	switch kind {
	case KindROT:
		rate := ROTStandardRate
		if at.Before(ROTCutover) {
			rate = ROTElevatedRate
		}
		return Resolution{Kind: KindROT, Rate: rate}
	case KindRUT:
		return Resolution{Kind: KindRUT, Rate: RUTRate}
	default:
		return Resolution{Kind: KindNone}
	}
}

// ResolveCapped is Resolve with the statutory yearly cap of the scheme
func ResolveCapped(kind Kind, at time.Time) Resolution {
	r := Resolve(kind, at)
	switch r.Kind {
	case KindROT:
		r.Cap = ROTCap
	case KindRUT:
		r.Cap = RUTCap
	}
	return r
}

// Amount is round(workCost × r.Rate), limited to r.Cap when one is set
func (r Resolution) Amount(workCost float64) float64 {
	return Amount(workCost, r.Rate, r.Cap)
}

// Amount computes round(workCost × rate), limited to cap when cap is positive
func Amount(workCost, rate, cap float64) float64 {
	if workCost <= 0 || rate <= 0 {
		return 0
	}
	amount := math.Round(workCost * rate)
	if cap > 0 && amount > cap {
		return cap
	}
	return amount
}

// CustomerPays returns max(0, totalWithVAT − deductionAmount)
func CustomerPays(totalWithVAT, deductionAmount float64) float64 {
	return math.Max(0, totalWithVAT-deductionAmount)
}
