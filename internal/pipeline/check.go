package pipeline

import (
	"github.com/jonathan/quote-pipeline/internal/flags"
	"github.com/jonathan/quote-pipeline/internal/jobs"
	"github.com/jonathan/quote-pipeline/internal/mathguard"
	"github.com/jonathan/quote-pipeline/internal/types"
	"github.com/jonathan/quote-pipeline/internal/validation"
)

// CheckResult is the outcome of re-checking a finished quote
type CheckResult struct {
	Validation types.ValidationResult `json:"validation"`

	// Corrections lists the summary fields the math guard would overwrite
	Corrections []types.Correction `json:"corrections"`
}

// Blocking reports whether the quote must not be sent as final
func (r CheckResult) Blocking() bool {
	return !r.Validation.Passed
}

// Check validates an existing quote against its family rules without changing it.
// description is scanned for customer-supplied materials. A zero UnitQty falls
// back to the job's default size.
func Check(q *types.Quote, description string, registry *jobs.Registry) CheckResult {
	if registry == nil {
		registry = jobs.Default()
	}
	def := registry.Find(q.JobType, description)
	size := q.UnitQty
	if size <= 0 {
		size = def.Defaults.UnitQty
	}

	res := validation.New(def).Validate(q, size, flags.Detect(description, nil))
	corrections := mathguard.Check(q)
	if corrections == nil {
		corrections = []types.Correction{}
	}
	return CheckResult{Validation: res, Corrections: corrections}
}
