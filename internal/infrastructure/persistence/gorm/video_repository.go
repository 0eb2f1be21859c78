package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/reelchef/internal/domain/video"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VideoRepository implements outbound.VideoRepository using GORM
type VideoRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ outbound.VideoRepository = (*VideoRepository)(nil)

// NewVideoRepository creates a new GORM video repository
func NewVideoRepository(db *gorm.DB, logger *zap.Logger) *VideoRepository {
	return &VideoRepository{
		db:     db,
		logger: logger.Named("video-repository"),
	}
}

// FindByID retrieves a video by ID
func (r *VideoRepository) FindByID(ctx context.Context, id string) (*video.Video, error) {
	var model VideoModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, video.ErrVideoNotFound
		}
		return nil, apperrors.NewDatabaseError("find video", err)
	}
	return ModelToVideo(&model), nil
}

// Save inserts the video or overwrites every column of an existing row
func (r *VideoRepository) Save(ctx context.Context, v *video.Video) error {
	model := VideoToModel(v)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
	if err != nil {
		r.logger.Error("Failed to save video", zap.String("video_id", v.ID), zap.Error(err))
		return apperrors.NewDatabaseError("save video", err)
	}
	return nil
}

// FindByStatus lists videos in a status, oldest update first
func (r *VideoRepository) FindByStatus(ctx context.Context, status video.Status, limit int) ([]*video.Video, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("updated_at ASC").Order("id ASC")
	return r.list(query, limit, "find videos by status")
}

// FindStuck lists processing videos last touched before cutoff
func (r *VideoRepository) FindStuck(ctx context.Context, cutoff time.Time, limit int) ([]*video.Video, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", string(video.StatusProcessing), cutoff.UTC()).
		Order("updated_at ASC").Order("id ASC")
	return r.list(query, limit, "find stuck videos")
}

func (r *VideoRepository) list(query *gorm.DB, limit int, op string) ([]*video.Video, error) {
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []VideoModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.NewDatabaseError(op, err)
	}

	videos := make([]*video.Video, len(models))
	for i := range models {
		videos[i] = ModelToVideo(&models[i])
	}
	return videos, nil
}
