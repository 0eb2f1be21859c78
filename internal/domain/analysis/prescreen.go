package analysis

// DefaultPreScreenThreshold is the minimum confidence for a video to be treated as a recipe
const DefaultPreScreenThreshold = 0.85

// PreScreenResult is the output of the cheap classification pass
type PreScreenResult struct {
	IsCookingVideo  bool            `json:"isCookingVideo"`
	Confidence      float64         `json:"confidence"`
	Reason          string          `json:"reason"`
	DetectedContent DetectedContent `json:"detectedContent"`
}

// DetectedContent lists what the classifier saw in the video
type DetectedContent struct {
	HasCookingInstructions bool     `json:"hasCookingInstructions"`
	HasIngredients         bool     `json:"hasIngredients"`
	HasRecipeSteps         bool     `json:"hasRecipeSteps"`
	IdentifiedDish         *string  `json:"identifiedDish,omitempty"`
	CookingTechniquesShown []string `json:"cookingTechniquesShown"`
}

// Passes reports whether the result clears the gate at threshold (inclusive)
func (r PreScreenResult) Passes(threshold float64) bool {
	return r.IsCookingVideo && r.Confidence >= threshold
}

// Outcome pairs a pre-screen verdict with the full analysis, which is nil
// when the gate rejected the video.
type Outcome struct {
	PreScreen PreScreenResult `json:"preScreen"`
	Analysis  *RecipeAnalysis `json:"analysis"`
}
