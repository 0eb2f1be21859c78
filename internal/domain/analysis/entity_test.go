package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEmpty_Defaults(t *testing.T) {
	a := NewEmpty()

	assert.NotNil(t, a.Ingredients)
	assert.Empty(t, a.Ingredients)
	assert.NotNil(t, a.Instructions)
	assert.NotNil(t, a.Tags)
	assert.Equal(t, 0.8, a.AIMetadata.ConfidenceScore)
	assert.Equal(t, "beginner", a.AIMetadata.SkillLevel)
	assert.Equal(t, CostEstimate{Min: 0, Max: 0, Currency: "USD"}, a.AIMetadata.EstimatedCost)
}

func TestNormalize_KeepsProvidedValues(t *testing.T) {
	a := RecipeAnalysis{
		Title:      "Ramen",
		AIMetadata: AIMetadata{ConfidenceScore: 0.95, SkillLevel: "advanced"},
	}

	a.Normalize()

	assert.Equal(t, 0.95, a.AIMetadata.ConfidenceScore)
	assert.Equal(t, "advanced", a.AIMetadata.SkillLevel)
	assert.Equal(t, "USD", a.AIMetadata.EstimatedCost.Currency)
	assert.NotNil(t, a.AIMetadata.EquipmentNeeded)
}

func TestNormalize_KeepsZeroConfidence(t *testing.T) {
	a := RecipeAnalysis{AIMetadata: AIMetadata{ConfidenceScore: 0}}

	a.Normalize()

	assert.Equal(t, 0.0, a.AIMetadata.ConfidenceScore)
	assert.Equal(t, "beginner", a.AIMetadata.SkillLevel)
}

func TestClone_IsDeep(t *testing.T) {
	amount := 200.0
	a := NewEmpty()
	a.Ingredients = []Ingredient{{Name: "flour", Amount: &amount}}
	a.AIMetadata.DetectedTechniques = []string{"kneading"}

	c := a.Clone()
	*c.Ingredients[0].Amount = 1
	c.AIMetadata.DetectedTechniques[0] = "frying"

	assert.Equal(t, 200.0, *a.Ingredients[0].Amount)
	assert.Equal(t, "kneading", a.AIMetadata.DetectedTechniques[0])
}

func TestParseDifficulty(t *testing.T) {
	assert.Equal(t, DifficultyEasy, ParseDifficulty("easy"))
	assert.Equal(t, DifficultyMedium, ParseDifficulty(" Medium "))
	assert.Equal(t, DifficultyHard, ParseDifficulty("Hard - lots of knife work"))
	assert.Equal(t, Difficulty(""), ParseDifficulty("unknown"))
}

func TestPreScreenResult_Passes(t *testing.T) {
	assert.False(t, PreScreenResult{IsCookingVideo: true, Confidence: 0.80}.Passes(DefaultPreScreenThreshold))
	assert.True(t, PreScreenResult{IsCookingVideo: true, Confidence: 0.85}.Passes(DefaultPreScreenThreshold))
	assert.False(t, PreScreenResult{IsCookingVideo: false, Confidence: 0.99}.Passes(DefaultPreScreenThreshold))
}

func TestChunkPlan_Position(t *testing.T) {
	plan := ChunkPlan{TotalSize: 30, Ranges: []ByteRange{{0, 19}, {14, 30}}}

	assert.Equal(t, ChunkPosition{Index: 0, Total: 2, First: true, Last: false}, plan.Position(0))
	assert.Equal(t, ChunkPosition{Index: 1, Total: 2, First: false, Last: true}, plan.Position(1))
	assert.Equal(t, int64(16), plan.Ranges[1].Len())
}
