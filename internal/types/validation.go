// Package types provides type definitions for structured data used throughout the quote pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// TotalIssue describes a quote whose pre-VAT total falls below a cost floor
type TotalIssue struct {
	Actual   float64 `json:"actual"`
	Minimum  float64 `json:"minimum"`
	Blocking bool    `json:"blocking"`
	Message  string  `json:"message"`
}

// AutoFixReport describes what the auto-fix pass did
type AutoFixReport struct {
	Attempted  bool     `json:"attempted"`
	Succeeded  bool     `json:"succeeded"`
	AddedItems []string `json:"added_items,omitempty"`
	Remaining  []string `json:"remaining_errors,omitempty"`
}

// ValidationResult is the outcome of a trade-family validation
type ValidationResult struct {
	Family           string         `json:"family"`
	Passed           bool           `json:"passed"`
	Errors           []string       `json:"errors"`
	Warnings         []string       `json:"warnings"`
	MissingItems     []string       `json:"missing_items"`
	UnderHouredItems []string       `json:"under_houred_items"`
	TotalIssue       *TotalIssue    `json:"total_issue,omitempty"`
	Violations       []Violation    `json:"violations"`
	AutoFix          *AutoFixReport `json:"auto_fix,omitempty"`
}
