package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/alchemorsel/reelchef/internal/domain/analysis"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	apperrors "github.com/alchemorsel/reelchef/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const analysisKeySpace = "analysis:"

// AnalysisCache stores analyses as JSON strings without expiry
type AnalysisCache struct {
	client redis.UniversalClient
	prefix string
	logger *zap.Logger
}

var _ outbound.AnalysisCache = (*AnalysisCache)(nil)

// NewAnalysisCache creates a Redis analysis cache. Keys are prefix + "analysis:" + video ID.
func NewAnalysisCache(client redis.UniversalClient, prefix string, logger *zap.Logger) *AnalysisCache {
	return &AnalysisCache{
		client: client,
		prefix: prefix,
		logger: logger.Named("analysis-cache"),
	}
}

// Key returns the Redis key for a video
func (c *AnalysisCache) Key(videoID string) string {
	return c.prefix + analysisKeySpace + videoID
}

// Get returns nil without error on a miss
func (c *AnalysisCache) Get(ctx context.Context, videoID string) (*analysis.RecipeAnalysis, error) {
	data, err := c.client.Get(ctx, c.Key(videoID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewExternalServiceError("redis", err)
	}

	var a analysis.RecipeAnalysis
	if err := json.Unmarshal(data, &a); err != nil {
		c.logger.Warn("Dropping undecodable cache entry", zap.String("video_id", videoID), zap.Error(err))
		return nil, nil
	}
	return &a, nil
}

// Put stores a, replacing any earlier entry
func (c *AnalysisCache) Put(ctx context.Context, videoID string, a analysis.RecipeAnalysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return apperrors.Wrap(err, "encode analysis")
	}
	if err := c.client.Set(ctx, c.Key(videoID), data, 0).Err(); err != nil {
		return apperrors.NewExternalServiceError("redis", err)
	}
	return nil
}

// Delete drops the entry for videoID if present
func (c *AnalysisCache) Delete(ctx context.Context, videoID string) error {
	if err := c.client.Del(ctx, c.Key(videoID)).Err(); err != nil {
		return apperrors.NewExternalServiceError("redis", err)
	}
	return nil
}
