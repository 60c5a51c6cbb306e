// Package types provides type definitions for structured data used throughout the quote pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// VATRate is the Swedish standard VAT rate applied to every quote
const VATRate = 0.25

// WorkItem represents one labour line of a quote
type WorkItem struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Reasoning   string  `json:"reasoning,omitempty"`
	Hours       float64 `json:"hours"`
	HourlyRate  float64 `json:"hourly_rate"`
	Subtotal    float64 `json:"subtotal"`
}

// Material represents a material or equipment line of a quote
type Material struct {
	Name         string  `json:"name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit,omitempty"`
	PricePerUnit float64 `json:"price_per_unit"`
	Subtotal     float64 `json:"subtotal"`
}

// Summary holds the aggregate figures of a quote. Every field is derived from the line items.
type Summary struct {
	WorkCost        float64 `json:"work_cost"`
	MaterialCost    float64 `json:"material_cost"`
	EquipmentCost   float64 `json:"equipment_cost"`
	TotalBeforeVAT  float64 `json:"total_before_vat"`
	VAT             float64 `json:"vat"`
	TotalWithVAT    float64 `json:"total_with_vat"`
	DeductionAmount float64 `json:"deduction_amount"`
	CustomerPays    float64 `json:"customer_pays"`
}

// Correction records one value the math guard overwrote
type Correction struct {
	Field        string  `json:"field"`
	Before       float64 `json:"before"`
	After        float64 `json:"after"`
	DriftPercent float64 `json:"drift_percent"`
}

// Quote is the aggregate produced for one quote request
type Quote struct {
	ID                 string       `json:"id"`
	JobType            string       `json:"job_type"`
	Category           string       `json:"category"`
	UnitQty            float64      `json:"unit_qty"`
	Unit               string       `json:"unit,omitempty"`
	WorkItems          []WorkItem   `json:"work_items"`
	Materials          []Material   `json:"materials"`
	Equipment          []Material   `json:"equipment"`
	Summary            Summary      `json:"summary"`
	DeductionType      string       `json:"deduction_type"`
	DeductionRate      float64      `json:"deduction_rate"`
	DeductionCap       float64      `json:"deduction_cap,omitempty"`
	Assumptions        []string     `json:"assumptions"`
	ValidationWarnings []string     `json:"validation_warnings"`
	Corrections        []Correction `json:"corrections,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
}

// Clone returns a deep copy of the quote so that stages never share slices
func (q *Quote) Clone() *Quote {
	if q == nil {
		return nil
	}
	c := *q
	c.WorkItems = append([]WorkItem(nil), q.WorkItems...)
	c.Materials = append([]Material(nil), q.Materials...)
	c.Equipment = append([]Material(nil), q.Equipment...)
	c.Assumptions = append([]string(nil), q.Assumptions...)
	c.ValidationWarnings = append([]string(nil), q.ValidationWarnings...)
	c.Corrections = append([]Correction(nil), q.Corrections...)
	return &c
}

// TotalHours returns the sum of hours across all work items
func (q *Quote) TotalHours() float64 {
	total := 0.0
	for _, item := range q.WorkItems {
		total += item.Hours
	}
	return total
}
