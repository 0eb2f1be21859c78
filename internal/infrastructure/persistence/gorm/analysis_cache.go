package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/reelchef/internal/domain/analysis"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalysisCache keeps analysis results in their own table, keyed by video ID
type AnalysisCache struct {
	db *gorm.DB
}

var _ outbound.AnalysisCache = (*AnalysisCache)(nil)

// NewAnalysisCache creates a table-backed analysis cache
func NewAnalysisCache(db *gorm.DB) *AnalysisCache {
	return &AnalysisCache{db: db}
}

// Get returns nil without error on a miss
func (c *AnalysisCache) Get(ctx context.Context, videoID string) (*analysis.RecipeAnalysis, error) {
	var model AnalysisCacheModel
	err := c.db.WithContext(ctx).First(&model, "video_id = ?", videoID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("read analysis cache", err)
	}
	a := model.Analysis.Data
	return &a, nil
}

// Put stores a, replacing any earlier entry
func (c *AnalysisCache) Put(ctx context.Context, videoID string, a analysis.RecipeAnalysis) error {
	model := &AnalysisCacheModel{
		VideoID:   videoID,
		Analysis:  NewJSONColumn(a),
		CreatedAt: time.Now().UTC(),
	}
	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "video_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
	if err != nil {
		return apperrors.NewDatabaseError("write analysis cache", err)
	}
	return nil
}

// Delete drops the entry for videoID if present
func (c *AnalysisCache) Delete(ctx context.Context, videoID string) error {
	err := c.db.WithContext(ctx).Delete(&AnalysisCacheModel{}, "video_id = ?", videoID).Error
	if err != nil {
		return apperrors.NewDatabaseError("delete analysis cache", err)
	}
	return nil
}
