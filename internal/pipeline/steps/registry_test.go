package steps

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepRegistry(t *testing.T) {
	require.Len(t, StepRegistry, len(Order))

	for _, stepName := range Order {
		def, ok := StepRegistry[stepName]
		require.True(t, ok, "Step %s should be in registry", stepName)
		assert.Equal(t, stepName, def.Name)
		assert.NotEmpty(t, def.Category)
	}
}

func TestStepRegistryCategories(t *testing.T) {
	categories := map[string][]string{
		CategoryIntake:     {ClassifyJob, ApplyDefaults, DetectFlags},
		CategoryGeneration: {GenerateItems, MergeItems},
		CategoryValidation: {ValidateQuote, RemergeItems},
		CategoryFinalize:   {RecomputeTotals, FilterMaterials, ResolveDeduction, MathGuard},
	}

	for category, stepNames := range categories {
		for _, stepName := range stepNames {
			def, ok := StepRegistry[stepName]
			require.True(t, ok)
			assert.Equal(t, category, def.Category, "Step %s should be in category %s", stepName, category)
		}
	}
}

func TestValidateOrder(t *testing.T) {
	assert.NoError(t, ValidateOrder(Order))

	err := ValidateOrder([]string{ClassifyJob, GenerateItems})
	require.Error(t, err)
	var depErr *DependencyError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, GenerateItems, depErr.Step)
	assert.Equal(t, []string{ApplyDefaults}, depErr.MissingDependencies)
}

func TestDependencyError(t *testing.T) {
	err := &DependencyError{
		Step:                "test_step",
		MissingDependencies: []string{"dep1", "dep2"},
	}

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing dependencies")
	assert.Equal(t, "test_step", err.Step)
	assert.Equal(t, []string{"dep1", "dep2"}, err.MissingDependencies)
}

func TestValidateDependencies_UnknownStep(t *testing.T) {
	err := ValidateDependencies(nil, "unknown_step")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown step")
}

func TestGetAvailableAndBlockedSteps(t *testing.T) {
	available := GetAvailableSteps(map[string]bool{})
	assert.Equal(t, []string{ClassifyJob, DetectFlags}, available)

	completed := map[string]bool{ClassifyJob: true, DetectFlags: true}
	available = GetAvailableSteps(completed)
	assert.Equal(t, []string{ApplyDefaults, ResolveDeduction}, available)

	blocked := GetBlockedSteps(completed)
	assert.NotContains(t, blocked, ApplyDefaults)
	assert.Contains(t, blocked, MathGuard)
	assert.Len(t, blocked, len(Order)-2-2)
}
