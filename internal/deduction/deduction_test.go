package deduction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	before := time.Date(2025, time.December, 31, 23, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		kind     Kind
		at       time.Time
		expected Resolution
	}{
		{"rot before cutover", KindROT, before, Resolution{KindROT, 0.50, 0}},
		{"rot on cutover", KindROT, ROTCutover, Resolution{KindROT, 0.30, 0}},
		{"rot after cutover", KindROT, ROTCutover.AddDate(0, 3, 0), Resolution{KindROT, 0.30, 0}},
		{"rut", KindRUT, before, Resolution{KindRUT, 0.50, 0}},
		{"none", KindNone, before, Resolution{Kind: KindNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.kind, tt.at))
		})
	}
}

func TestResolveCapped(t *testing.T) {
	before := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, Resolution{KindROT, 0.50, ROTCap}, ResolveCapped(KindROT, before))
	assert.Equal(t, Resolution{KindRUT, 0.50, RUTCap}, ResolveCapped(KindRUT, before))
	assert.Equal(t, Resolution{Kind: KindNone}, ResolveCapped(KindNone, before))
}

func TestResolution_Amount(t *testing.T) {
	at := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		resolution Resolution
		workCost   float64
		expected   float64
	}{
		{"uncapped rot by default", Resolve(KindROT, at), 200000, 100000},
		{"capped rot", ResolveCapped(KindROT, at), 200000, ROTCap},
		{"uncapped rut by default", Resolve(KindRUT, at), 200000, 100000},
		{"capped rut", ResolveCapped(KindRUT, at), 200000, RUTCap},
		{"below the cap", ResolveCapped(KindROT, at), 40000, 20000},
		{"none", Resolve(KindNone, at), 200000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.resolution.Amount(tt.workCost))
		})
	}
}

func TestAmount_ROTScenario(t *testing.T) {
	before := Resolve(KindROT, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))
	after := Resolve(KindROT, time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 20000.0, before.Amount(40000))
	assert.Equal(t, 12000.0, after.Amount(40000))
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name     string
		workCost float64
		rate     float64
		cap      float64
		expected float64
	}{
		{"rounds to whole kronor", 1001, 0.3, 0, 300},
		{"capped", 200000, 0.5, ROTCap, ROTCap},
		{"zero cap means uncapped", 200000, 0.5, 0, 100000},
		{"no work", 0, 0.5, ROTCap, 0},
		{"no rate", 1000, 0, ROTCap, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Amount(tt.workCost, tt.rate, tt.cap))
		})
	}
}

func TestCustomerPays(t *testing.T) {
	assert.Equal(t, 30000.0, CustomerPays(50000, 20000))
	assert.Equal(t, 0.0, CustomerPays(1000, 2000))
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindROT, ParseKind(" rot "))
	assert.Equal(t, KindRUT, ParseKind("RUT"))
	assert.Equal(t, KindNone, ParseKind(""))
	assert.Equal(t, KindNone, ParseKind("green"))
}
