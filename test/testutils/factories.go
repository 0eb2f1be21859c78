// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"encoding/json"
	"time"

	"github.com/alchemorsel/reelchef/internal/domain/analysis"
	"github.com/alchemorsel/reelchef/internal/domain/video"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// AnalysisFactory creates recipe analyses filled with fake but well-formed data
type AnalysisFactory struct {
	faker *gofakeit.Faker
}

// NewAnalysisFactory creates a new analysis factory with a seeded faker
func NewAnalysisFactory(seed int64) *AnalysisFactory {
	return &AnalysisFactory{faker: gofakeit.New(seed)}
}

// AnalysisBuilder provides a fluent interface for building test analyses
type AnalysisBuilder struct {
	a     analysis.RecipeAnalysis
	faker *gofakeit.Faker
}

// NewAnalysisBuilder starts from the parser defaults
func NewAnalysisBuilder() *AnalysisBuilder {
	a := analysis.NewEmpty()
	a.Difficulty = analysis.DifficultyMedium
	return &AnalysisBuilder{a: a, faker: gofakeit.New(time.Now().UnixNano())}
}

// WithTitle sets the title
func (b *AnalysisBuilder) WithTitle(title string) *AnalysisBuilder {
	b.a.Title = title
	return b
}

// WithIngredients appends ingredients by name
func (b *AnalysisBuilder) WithIngredients(names ...string) *AnalysisBuilder {
	for _, name := range names {
		amount := b.faker.Float64Range(1, 500)
		unit := "g"
		b.a.Ingredients = append(b.a.Ingredients, analysis.Ingredient{Name: name, Amount: &amount, Unit: &unit})
	}
	return b
}

// WithSteps appends steps numbered from 1 with the given descriptions
func (b *AnalysisBuilder) WithSteps(descriptions ...string) *AnalysisBuilder {
	for i, d := range descriptions {
		b.a.Instructions = append(b.a.Instructions, analysis.InstructionStep{Step: i + 1, Description: d})
	}
	return b
}

// WithTags sets tags
func (b *AnalysisBuilder) WithTags(tags ...string) *AnalysisBuilder {
	b.a.Tags = append([]string{}, tags...)
	return b
}

// WithConfidence sets the metadata confidence score
func (b *AnalysisBuilder) WithConfidence(score float64) *AnalysisBuilder {
	b.a.AIMetadata.ConfidenceScore = score
	return b
}

// WithTechniques sets detected techniques
func (b *AnalysisBuilder) WithTechniques(techniques ...string) *AnalysisBuilder {
	b.a.AIMetadata.DetectedTechniques = append([]string{}, techniques...)
	return b
}

// Build returns the analysis
func (b *AnalysisBuilder) Build() analysis.RecipeAnalysis {
	return b.a.Clone()
}

// CreateAnalysis creates a complete analysis with n ingredients and m steps
func (f *AnalysisFactory) CreateAnalysis(ingredients, steps int) analysis.RecipeAnalysis {
	a := analysis.NewEmpty()
	a.Title = f.faker.Dinner()
	a.Description = f.faker.Sentence(12)
	a.Cuisine = f.faker.RandomString([]string{"Italian", "Thai", "Mexican", "Japanese", "French"})
	a.Difficulty = analysis.Difficulty(f.faker.RandomString([]string{"Easy", "Medium", "Hard"}))
	a.CookingTime = f.faker.IntRange(5, 120)

	seen := map[string]bool{}
	for len(a.Ingredients) < ingredients {
		name := f.faker.Vegetable()
		if seen[name] {
			name = name + " " + f.faker.Adjective()
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		amount := float64(f.faker.IntRange(1, 500))
		unit := f.faker.RandomString([]string{"g", "ml", "tbsp", "cup"})
		a.Ingredients = append(a.Ingredients, analysis.Ingredient{Name: name, Amount: &amount, Unit: &unit})
	}

	for i := 1; i <= steps; i++ {
		ts := float64(i * 30)
		a.Instructions = append(a.Instructions, analysis.InstructionStep{
			Step:        i,
			Description: f.faker.Sentence(8),
			Timestamp:   &ts,
		})
	}

	a.Tags = []string{f.faker.Noun(), f.faker.Adjective()}
	a.Nutrition = analysis.Nutrition{Servings: 2, Calories: float64(f.faker.IntRange(200, 900)), Protein: 20, Carbs: 40, Fat: 15, Fiber: 5}
	a.AIMetadata.ConfidenceScore = f.faker.Float64Range(0.5, 1)
	a.AIMetadata.DetectedTechniques = []string{f.faker.Verb()}
	a.AIMetadata.EstimatedCost = analysis.CostEstimate{Min: 500, Max: 1200, Currency: "USD"}

	return a
}

// CreateVideo creates a pending video stored under the videos/ prefix
func (f *AnalysisFactory) CreateVideo() *video.Video {
	id := uuid.NewString()
	v, _ := video.New(id, "videos/"+id+".mp4", "")
	return v
}

// MustJSON marshals v or panics
func MustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
