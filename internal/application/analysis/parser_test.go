package analysis

import (
	"testing"

	domain "github.com/alchemorsel/reelchef/internal/domain/analysis"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"github.com/alchemorsel/reelchef/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_JSONRoundTrip(t *testing.T) {
	want := testutils.NewAnalysisFactory(42).CreateAnalysis(3, 4)
	raw := testutils.MustJSON(want)

	result := Parse(raw)

	parsed, ok := result.(ParsedJSON)
	require.True(t, ok, "expected ParsedJSON, got %T", result)
	assert.Equal(t, want, parsed.Analysis)
}

func TestParse_JSONWrappedInProse(t *testing.T) {
	want := testutils.NewAnalysisBuilder().
		WithTitle("Shakshuka").
		WithIngredients("eggs", "tomatoes").
		WithSteps("Simmer sauce", "Poach eggs").
		Build()
	raw := "Here is the recipe you asked for:\n```json\n" + testutils.MustJSON(want) + "\n```\nEnjoy!"

	got, err := ParseAnalysis(raw)

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParse_JSONMissingFieldsGetDefaults(t *testing.T) {
	got, err := ParseAnalysis(`{"title": "Toast", "difficulty": "easy"}`)

	require.NoError(t, err)
	assert.Equal(t, "Toast", got.Title)
	assert.Equal(t, domain.DifficultyEasy, got.Difficulty)
	assert.NotNil(t, got.Ingredients)
	assert.Empty(t, got.Ingredients)
	assert.NotNil(t, got.Instructions)
	assert.NotNil(t, got.Tags)
	assert.Equal(t, 0.8, got.AIMetadata.ConfidenceScore)
	assert.Equal(t, "beginner", got.AIMetadata.SkillLevel)
	assert.Equal(t, domain.CostEstimate{Currency: "USD"}, got.AIMetadata.EstimatedCost)
}

func TestParse_JSONKeepsExplicitZeroConfidence(t *testing.T) {
	want := domain.NewEmpty()
	want.Title = "Mystery stew"
	want.AIMetadata.ConfidenceScore = 0

	got, err := ParseAnalysis(testutils.MustJSON(want))

	require.NoError(t, err)
	assert.Equal(t, 0.0, got.AIMetadata.ConfidenceScore)
	assert.Equal(t, want, got)
}

func TestParse_JSONPartialMetadataKeepsDefaultConfidence(t *testing.T) {
	got, err := ParseAnalysis(`{"title": "Toast", "aiMetadata": {"skillLevel": "advanced"}}`)

	require.NoError(t, err)
	assert.Equal(t, 0.8, got.AIMetadata.ConfidenceScore)
	assert.Equal(t, "advanced", got.AIMetadata.SkillLevel)
}

func TestParse_StructuredFallback(t *testing.T) {
	raw := `Title and Brief Description
Recipe name: Pasta
Brief description: A quick weeknight pasta: garlic, oil and chili.
Type of cuisine: Italian
Difficulty level: Easy
Total cooking time: 25 minutes

Ingredients
- spaghetti
- garlic`

	result := Parse(raw)

	structured, ok := result.(ParsedStructured)
	require.True(t, ok, "expected ParsedStructured, got %T", result)
	require.Error(t, structured.JSONErr)

	a := structured.Analysis
	assert.Equal(t, "Pasta", a.Title)
	assert.Equal(t, "A quick weeknight pasta: garlic, oil and chili.", a.Description)
	assert.Equal(t, "Italian", a.Cuisine)
	assert.Equal(t, domain.DifficultyEasy, a.Difficulty)
	assert.Equal(t, 25, a.CookingTime)
	assert.NotNil(t, a.Ingredients)
	assert.Empty(t, a.Ingredients)
	assert.NotNil(t, a.Instructions)
	assert.Empty(t, a.Instructions)
	assert.NotNil(t, a.Tags)
	assert.Empty(t, a.Tags)
	assert.Equal(t, 0.8, a.AIMetadata.ConfidenceScore)
}

func TestParse_StructuredFallbackHeaderAfterLeadIn(t *testing.T) {
	raw := "Here is my analysis.\nTitle and Brief Description\nRecipe name: Pasta"

	got, err := ParseAnalysis(raw)

	require.NoError(t, err)
	assert.Equal(t, "Pasta", got.Title)
}

func TestParse_StructuredFallbackWithMarkdownHeader(t *testing.T) {
	raw := "## 1. **Title and Brief Description**\n\n- **Recipe name:** Pad Thai\n- **Difficulty level:** Medium"

	got, err := ParseAnalysis(raw)

	require.NoError(t, err)
	assert.Equal(t, "Pad Thai", got.Title)
	assert.Equal(t, domain.DifficultyMedium, got.Difficulty)
}

func TestParse_MalformedJSONFallsBack(t *testing.T) {
	raw := "{\"title\": \"Broken\", \n\nTitle and Brief Description\nRecipe name: Soup\n}"

	result := Parse(raw)

	structured, ok := result.(ParsedStructured)
	require.True(t, ok)
	assert.Equal(t, "Soup", structured.Analysis.Title)
}

func TestParse_UnlabeledTextYieldsDefaults(t *testing.T) {
	got, err := ParseAnalysis("I could not find a recipe in this video.")

	require.NoError(t, err)
	assert.Empty(t, got.Title)
	assert.Equal(t, domain.NewEmpty(), got)
}

func TestParse_EmptyTextFails(t *testing.T) {
	result := Parse("   \n ")

	_, ok := result.(ParseFailure)
	require.True(t, ok)

	_, err := Resolve(result)
	assert.True(t, apperrors.Is(err, apperrors.CodeParseFailed))
}
