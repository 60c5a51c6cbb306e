// Package steps provides stage definitions and dependency validation
// for the quote pipeline.
package steps

import (
	"fmt"
	"sort"
)

// Stage categories
const (
	CategoryIntake     = "intake"
	CategoryGeneration = "generation"
	CategoryValidation = "validation"
	CategoryFinalize   = "finalize"
)

// Stage names in execution order
const (
	ClassifyJob      = "classify_job"
	ApplyDefaults    = "apply_defaults"
	DetectFlags      = "detect_flags"
	GenerateItems    = "generate_items"
	MergeItems       = "merge_items"
	ValidateQuote    = "validate_quote"
	RemergeItems     = "remerge_items"
	RecomputeTotals  = "recompute_totals"
	FilterMaterials  = "filter_materials"
	ResolveDeduction = "resolve_deduction"
	MathGuard        = "math_guard"
)

// StepDefinition defines metadata for a pipeline stage
type StepDefinition struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Dependencies []string `json:"dependencies"`
	Optional     []string `json:"optional,omitempty"`
}

// Order lists the stages in the sequence the pipeline runs them
var Order = []string{
	ClassifyJob,
	ApplyDefaults,
	DetectFlags,
	GenerateItems,
	MergeItems,
	ValidateQuote,
	RemergeItems,
	RecomputeTotals,
	FilterMaterials,
	ResolveDeduction,
	MathGuard,
}

// StepRegistry holds all stage definitions
var StepRegistry = map[string]StepDefinition{
	ClassifyJob: {
		Name:         ClassifyJob,
		Category:     CategoryIntake,
		Dependencies: []string{},
		Optional:     []string{},
	},
	ApplyDefaults: {
		Name:         ApplyDefaults,
		Category:     CategoryIntake,
		Dependencies: []string{ClassifyJob},
		Optional:     []string{},
	},
	DetectFlags: {
		Name:         DetectFlags,
		Category:     CategoryIntake,
		Dependencies: []string{},
		Optional:     []string{},
	},
	GenerateItems: {
		Name:         GenerateItems,
		Category:     CategoryGeneration,
		Dependencies: []string{ApplyDefaults},
		Optional:     []string{},
	},
	MergeItems: {
		Name:         MergeItems,
		Category:     CategoryGeneration,
		Dependencies: []string{GenerateItems},
		Optional:     []string{},
	},
	ValidateQuote: {
		Name:         ValidateQuote,
		Category:     CategoryValidation,
		Dependencies: []string{MergeItems, DetectFlags},
		Optional:     []string{},
	},
	RemergeItems: {
		Name:         RemergeItems,
		Category:     CategoryValidation,
		Dependencies: []string{ValidateQuote},
		Optional:     []string{},
	},
	RecomputeTotals: {
		Name:         RecomputeTotals,
		Category:     CategoryFinalize,
		Dependencies: []string{RemergeItems},
		Optional:     []string{},
	},
	FilterMaterials: {
		Name:         FilterMaterials,
		Category:     CategoryFinalize,
		Dependencies: []string{RecomputeTotals, DetectFlags},
		Optional:     []string{},
	},
	ResolveDeduction: {
		Name:         ResolveDeduction,
		Category:     CategoryFinalize,
		Dependencies: []string{ClassifyJob},
		Optional:     []string{FilterMaterials},
	},
	MathGuard: {
		Name:         MathGuard,
		Category:     CategoryFinalize,
		Dependencies: []string{ResolveDeduction, FilterMaterials},
		Optional:     []string{},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("missing dependencies: %v", e.MissingDependencies)
}

// ValidateDependencies checks that every required dependency of a stage has completed
func ValidateDependencies(completed map[string]bool, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}

	return nil
}

// ValidateOrder checks that each stage of order runs after its dependencies
func ValidateOrder(order []string) error {
	completed := map[string]bool{}
	for _, name := range order {
		if err := ValidateDependencies(completed, name); err != nil {
			return fmt.Errorf("stage %s out of order: %w", name, err)
		}
		completed[name] = true
	}
	return nil
}

// GetAvailableSteps returns the stages that can run next, sorted by name
func GetAvailableSteps(completed map[string]bool) []string {
	var available []string
	for stepName := range StepRegistry {
		if completed[stepName] {
			continue
		}
		if err := ValidateDependencies(completed, stepName); err != nil {
			continue
		}
		available = append(available, stepName)
	}
	sort.Strings(available)
	return available
}

// GetBlockedSteps returns the stages waiting on a dependency, sorted by name
func GetBlockedSteps(completed map[string]bool) []string {
	var blocked []string
	for stepName := range StepRegistry {
		if completed[stepName] {
			continue
		}
		if err := ValidateDependencies(completed, stepName); err != nil {
			blocked = append(blocked, stepName)
		}
	}
	sort.Strings(blocked)
	return blocked
}
