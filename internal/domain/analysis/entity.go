// Package analysis holds the recipe-analysis records extracted from cooking videos
package analysis

import "strings"

// Difficulty is the coarse skill rating of a recipe
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty maps free text like "medium" or "Hard (knife work)" onto a Difficulty.
// Unknown values yield the empty string.
func ParseDifficulty(s string) Difficulty {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(lower, "easy"), strings.HasPrefix(lower, "beginner"):
		return DifficultyEasy
	case strings.HasPrefix(lower, "medium"), strings.HasPrefix(lower, "intermediate"):
		return DifficultyMedium
	case strings.HasPrefix(lower, "hard"), strings.HasPrefix(lower, "difficult"), strings.HasPrefix(lower, "advanced"):
		return DifficultyHard
	default:
		return ""
	}
}

// Defaults applied when the model omits a field
const (
	DefaultConfidenceScore = 0.8
	DefaultSkillLevel      = "beginner"
	DefaultCurrency        = "USD"
)

// RecipeAnalysis is the structured recipe extracted from one video
type RecipeAnalysis struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Cuisine      string            `json:"cuisine"`
	Difficulty   Difficulty        `json:"difficulty"`
	CookingTime  int               `json:"cookingTime"`
	Ingredients  []Ingredient      `json:"ingredients"`
	Instructions []InstructionStep `json:"instructions"`
	Nutrition    Nutrition         `json:"nutrition"`
	Tags         []string          `json:"tags"`
	AIMetadata   AIMetadata        `json:"aiMetadata"`
}

// Ingredient is one line of the ingredient list. Name is the dedup key.
type Ingredient struct {
	Name           string   `json:"name"`
	Amount         *float64 `json:"amount"`
	Unit           *string  `json:"unit"`
	EstimatedPrice *int64   `json:"estimatedPrice,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}

// InstructionStep is one numbered step. Timestamp and Duration are seconds.
type InstructionStep struct {
	Step        int      `json:"step"`
	Description string   `json:"description"`
	Timestamp   *float64 `json:"timestamp,omitempty"`
	Duration    *float64 `json:"duration,omitempty"`
}

// Nutrition holds per-serving values
type Nutrition struct {
	Servings float64 `json:"servings"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// CostEstimate is expressed in minor currency units
type CostEstimate struct {
	Min      int64  `json:"min"`
	Max      int64  `json:"max"`
	Currency string `json:"currency"`
}

// AIMetadata carries model-side observations about the video
type AIMetadata struct {
	DetectedIngredients []string     `json:"detectedIngredients"`
	DetectedTechniques  []string     `json:"detectedTechniques"`
	ConfidenceScore     float64      `json:"confidenceScore"`
	SuggestedHashtags   []string     `json:"suggestedHashtags"`
	EquipmentNeeded     []string     `json:"equipmentNeeded"`
	SkillLevel          string       `json:"skillLevel"`
	TotalTime           int          `json:"totalTime"`
	PrepTime            int          `json:"prepTime"`
	CookTime            int          `json:"cookTime"`
	EstimatedCost       CostEstimate `json:"estimatedCost"`
}

// NewEmpty returns an analysis populated with the documented defaults
func NewEmpty() RecipeAnalysis {
	return RecipeAnalysis{
		Ingredients:  []Ingredient{},
		Instructions: []InstructionStep{},
		Tags:         []string{},
		AIMetadata: AIMetadata{
			DetectedIngredients: []string{},
			DetectedTechniques:  []string{},
			SuggestedHashtags:   []string{},
			EquipmentNeeded:     []string{},
			ConfidenceScore:     DefaultConfidenceScore,
			SkillLevel:          DefaultSkillLevel,
			EstimatedCost:       CostEstimate{Currency: DefaultCurrency},
		},
	}
}

// Normalize fills nil slices and empty string defaults in place. A zero
// confidence score is a real value and is kept.
func (a *RecipeAnalysis) Normalize() {
	if a.Ingredients == nil {
		a.Ingredients = []Ingredient{}
	}
	if a.Instructions == nil {
		a.Instructions = []InstructionStep{}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}

	m := &a.AIMetadata
	if m.DetectedIngredients == nil {
		m.DetectedIngredients = []string{}
	}
	if m.DetectedTechniques == nil {
		m.DetectedTechniques = []string{}
	}
	if m.SuggestedHashtags == nil {
		m.SuggestedHashtags = []string{}
	}
	if m.EquipmentNeeded == nil {
		m.EquipmentNeeded = []string{}
	}
	if m.SkillLevel == "" {
		m.SkillLevel = DefaultSkillLevel
	}
	if m.EstimatedCost.Currency == "" {
		m.EstimatedCost.Currency = DefaultCurrency
	}
}

// Clone returns a deep copy so callers can mutate the result freely
func (a RecipeAnalysis) Clone() RecipeAnalysis {
	out := a

	out.Ingredients = make([]Ingredient, len(a.Ingredients))
	for i, ing := range a.Ingredients {
		out.Ingredients[i] = ing.clone()
	}

	out.Instructions = make([]InstructionStep, len(a.Instructions))
	for i, step := range a.Instructions {
		out.Instructions[i] = step.clone()
	}

	out.Tags = cloneStrings(a.Tags)
	out.AIMetadata.DetectedIngredients = cloneStrings(a.AIMetadata.DetectedIngredients)
	out.AIMetadata.DetectedTechniques = cloneStrings(a.AIMetadata.DetectedTechniques)
	out.AIMetadata.SuggestedHashtags = cloneStrings(a.AIMetadata.SuggestedHashtags)
	out.AIMetadata.EquipmentNeeded = cloneStrings(a.AIMetadata.EquipmentNeeded)

	return out
}

// MaxStep returns the highest step number, or 0 for no instructions
func (a RecipeAnalysis) MaxStep() int {
	maxStep := 0
	for _, s := range a.Instructions {
		if s.Step > maxStep {
			maxStep = s.Step
		}
	}
	return maxStep
}

func (i Ingredient) clone() Ingredient {
	out := i
	out.Amount = clonePtr(i.Amount)
	out.Unit = clonePtr(i.Unit)
	out.EstimatedPrice = clonePtr(i.EstimatedPrice)
	out.Notes = clonePtr(i.Notes)
	return out
}

func (s InstructionStep) clone() InstructionStep {
	out := s
	out.Timestamp = clonePtr(s.Timestamp)
	out.Duration = clonePtr(s.Duration)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
