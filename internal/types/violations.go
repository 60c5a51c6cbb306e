// Package types provides type definitions for structured data used throughout the quote pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Violation severities
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Violation represents a single business-rule finding on a quote
type Violation struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Details  string `json:"details"`

	// Item names the work item or material the finding is about, if any
	Item string `json:"item,omitempty"`
}

// Blocking reports whether the violation prevents the quote from being final
func (v Violation) Blocking() bool {
	return v.Severity == SeverityError
}

// Violations represents a collection of findings
type Violations struct {
	Violations []Violation `json:"violations"`
}

// Errors returns the details of blocking violations in order
func (v *Violations) Errors() []string {
	return v.details(SeverityError)
}

// Warnings returns the details of non-blocking violations in order
func (v *Violations) Warnings() []string {
	return v.details(SeverityWarning)
}

func (v *Violations) details(severity string) []string {
	out := []string{}
	for _, violation := range v.Violations {
		if violation.Severity == severity {
			out = append(out, violation.Details)
		}
	}
	return out
}
