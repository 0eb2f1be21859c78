//go:build integration

package gorm

import (
	"context"
	"testing"
	"time"

	"github.com/alchemorsel/reelchef/internal/domain/video"
	"github.com/alchemorsel/reelchef/internal/infrastructure/config"
	"github.com/alchemorsel/reelchef/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestVideoRepository_Postgres(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	cfg := &config.Config{
		Log:      config.LogConfig{Level: "warn"},
		Database: testutils.SetupPostgres(t),
	}

	db, err := Open(cfg, logger)
	require.NoError(t, err)
	defer Close(db)

	repo := NewVideoRepository(db, logger)
	cache := NewAnalysisCache(db)
	factory := testutils.NewAnalysisFactory(31)

	v := factory.CreateVideo()
	v.MarkProcessing()
	v.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, v))

	stuck, err := repo.FindStuck(ctx, time.Now().Add(-10*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, stuck, 1)

	a := factory.CreateAnalysis(4, 5)
	v.ApplyAnalysis(a)
	require.NoError(t, repo.Save(ctx, v))
	require.NoError(t, cache.Put(ctx, v.ID, a))

	got, err := repo.FindByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, video.StatusActive, got.Status)
	require.NotNil(t, got.Analysis)
	assert.Equal(t, a, *got.Analysis)

	cached, err := cache.Get(ctx, v.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, a, *cached)
}
