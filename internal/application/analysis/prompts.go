package analysis

import (
	"fmt"
	"strings"

	domain "github.com/alchemorsel/reelchef/internal/domain/analysis"
)

// RecipeAnalysisPrompt asks for the full recipe record as JSON
const RecipeAnalysisPrompt = `Analyze this cooking video and extract the recipe it demonstrates.
Respond with a single JSON object and nothing else, using exactly this shape:
{
  "title": string,
  "description": string,
  "cuisine": string,
  "difficulty": "Easy" | "Medium" | "Hard",
  "cookingTime": number (minutes),
  "ingredients": [{"name": string, "amount": number | null, "unit": string | null, "estimatedPrice": number (cents), "notes": string}],
  "instructions": [{"step": number, "description": string, "timestamp": number (seconds), "duration": number (seconds)}],
  "nutrition": {"servings": number, "calories": number, "protein": number, "carbs": number, "fat": number, "fiber": number},
  "tags": [string],
  "aiMetadata": {
    "detectedIngredients": [string],
    "detectedTechniques": [string],
    "confidenceScore": number between 0 and 1,
    "suggestedHashtags": [string],
    "equipmentNeeded": [string],
    "skillLevel": string,
    "totalTime": number, "prepTime": number, "cookTime": number,
    "estimatedCost": {"min": number (cents), "max": number (cents), "currency": string}
  }
}
If you cannot produce JSON, answer with labeled sections instead, starting with a
"Title and Brief Description" section containing the lines "Recipe name:",
"Brief description:", "Type of cuisine:", "Difficulty level:" and "Total cooking time:".`

// PreScreenPrompt asks only whether the video is a cooking video
const PreScreenPrompt = `Decide whether this video is a cooking or recipe video.
Respond with strict JSON only, no markdown, no commentary:
{
  "isCookingVideo": boolean,
  "confidence": number between 0 and 1,
  "reason": string,
  "detectedContent": {
    "hasCookingInstructions": boolean,
    "hasIngredients": boolean,
    "hasRecipeSteps": boolean,
    "identifiedDish": string or null,
    "cookingTechniquesShown": [string]
  }
}`

const (
	continuationPrefix = "This is a continuation of the previous video segment (part %d of %d). " +
		"Continue the recipe from where the previous segment left off and do not repeat earlier steps.\n\n"
	partialVideoSuffix = "\n\nNote: this is a partial video. The recipe continues in the next segment, " +
		"so report only what is shown here and do not invent a conclusion."
)

// BuildChunkPrompt wraps template with wording that tells the model where the
// chunk sits in the video
func BuildChunkPrompt(template string, pos domain.ChunkPosition) string {
	var b strings.Builder

	if !pos.First {
		fmt.Fprintf(&b, continuationPrefix, pos.Index+1, pos.Total)
	}
	b.WriteString(template)
	if !pos.Last {
		b.WriteString(partialVideoSuffix)
	}

	return b.String()
}
