package gorm

import (
	"github.com/alchemorsel/reelchef/internal/domain/analysis"
	"github.com/alchemorsel/reelchef/internal/domain/video"
)

// VideoToModel converts a domain video to its row
func VideoToModel(v *video.Video) *VideoModel {
	m := &VideoModel{
		ID:          v.ID,
		StoragePath: v.StoragePath,
		VideoURL:    v.VideoURL,
		Status:      string(v.Status),
		Error:       v.Error,
		CreatedAt:   v.CreatedAt.UTC(),
		UpdatedAt:   v.UpdatedAt.UTC(),
	}

	if a := v.Analysis; a != nil {
		m.HasAnalysis = true
		m.Title = a.Title
		m.Description = a.Description
		m.Cuisine = a.Cuisine
		m.Difficulty = string(a.Difficulty)
		m.CookingTime = a.CookingTime
		m.Ingredients = NewJSONColumn(a.Ingredients)
		m.Instructions = NewJSONColumn(a.Instructions)
		m.Nutrition = NewJSONColumn(a.Nutrition)
		m.Tags = StringSlice(a.Tags)
		m.AIMetadata = NewJSONColumn(a.AIMetadata)
	}

	return m
}

// ModelToVideo converts a row back to a domain video
func ModelToVideo(m *VideoModel) *video.Video {
	v := &video.Video{
		ID:          m.ID,
		StoragePath: m.StoragePath,
		VideoURL:    m.VideoURL,
		Status:      video.Status(m.Status),
		Error:       m.Error,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}

	if m.HasAnalysis {
		a := analysis.RecipeAnalysis{
			Title:        m.Title,
			Description:  m.Description,
			Cuisine:      m.Cuisine,
			Difficulty:   analysis.Difficulty(m.Difficulty),
			CookingTime:  m.CookingTime,
			Ingredients:  m.Ingredients.Data,
			Instructions: m.Instructions.Data,
			Nutrition:    m.Nutrition.Data,
			Tags:         []string(m.Tags),
			AIMetadata:   m.AIMetadata.Data,
		}
		v.Analysis = &a
	}

	return v
}
