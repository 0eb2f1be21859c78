// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"testing"

	"github.com/alchemorsel/reelchef/internal/domain/analysis"
	"github.com/stretchr/testify/assert"
)

// AssertContiguousSteps checks that steps run 1..N with no gaps
func AssertContiguousSteps(t *testing.T, a analysis.RecipeAnalysis) {
	t.Helper()
	for i, s := range a.Instructions {
		assert.Equal(t, i+1, s.Step, "step %d out of sequence", i)
	}
}

// AssertNoDuplicateIngredients checks ingredient names are unique
func AssertNoDuplicateIngredients(t *testing.T, a analysis.RecipeAnalysis) {
	t.Helper()
	seen := make(map[string]bool, len(a.Ingredients))
	for _, ing := range a.Ingredients {
		assert.False(t, seen[ing.Name], "duplicate ingredient %q", ing.Name)
		seen[ing.Name] = true
	}
}

// AssertUnique checks a string set has no repeats
func AssertUnique(t *testing.T, values []string) {
	t.Helper()
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		assert.False(t, seen[v], "duplicate value %q", v)
		seen[v] = true
	}
}
