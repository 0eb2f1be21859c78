package analysis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alchemorsel/reelchef/internal/domain/video"
	"github.com/alchemorsel/reelchef/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/reelchef/pkg/retry"
	"github.com/alchemorsel/reelchef/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type batchFixture struct {
	videos  *memory.VideoRepository
	cache   *memory.AnalysisCache
	model   *testutils.MockGenerativeModel
	fetcher *testutils.MockVideoFetcher
	store   *testutils.MockBlobStore
	runner  *BatchRunner
	scratch string
}

func newBatchFixture(t *testing.T) *batchFixture {
	logger := zaptest.NewLogger(t)
	f := &batchFixture{
		videos:  memory.NewVideoRepository(),
		cache:   memory.NewAnalysisCache(),
		model:   &testutils.MockGenerativeModel{},
		fetcher: &testutils.MockVideoFetcher{},
		store:   &testutils.MockBlobStore{},
		scratch: filepath.Join(t.TempDir(), "temp_processed_videos"),
	}

	analyzer := NewChunkAnalyzer(f.model, nil, logger)
	extractor, err := NewRecipeExtractor(analyzer, DefaultChunkPolicy(), retry.Policy{MaxRetries: 0, InitialDelay: time.Millisecond}, nil, logger)
	require.NoError(t, err)

	remote := NewRemoteSource(f.store, f.fetcher, DefaultPresignExpiry)
	pipeline := NewPipeline(f.videos, f.cache, remote, extractor, nil, nil, logger)
	gate := NewPreScreenGate(analyzer, extractor, 0, nil, logger)
	f.runner = NewBatchRunner(pipeline, f.videos, remote, f.fetcher, gate, f.scratch, logger)
	return f
}

func (f *batchFixture) seedFailed(t *testing.T, id string) *video.Video {
	v, err := video.New(id, "videos/"+id+".mp4", "")
	require.NoError(t, err)
	v.MarkProcessing()
	v.MarkFailed("earlier failure")
	require.NoError(t, f.videos.Save(context.Background(), v))

	signed := "https://storage.example.com/" + id
	f.store.On("PresignGet", mock.Anything, v.StoragePath, DefaultPresignExpiry).Return(signed, nil)
	return v
}

func TestBatch_ContinuesPastFailuresAndCleansScratch(t *testing.T) {
	f := newBatchFixture(t)
	f.seedFailed(t, "good")
	f.seedFailed(t, "broken")

	f.fetcher.On("Download", mock.Anything, "https://storage.example.com/good", mock.Anything).Return([]byte("good-bytes"), nil)
	f.fetcher.On("Download", mock.Anything, "https://storage.example.com/broken", mock.Anything).Return(nil, errors.New("connection reset"))
	f.model.On("GenerateFromVideo", mock.Anything, mock.Anything).
		Return(testutils.MustJSON(testutils.NewAnalysisFactory(1).CreateAnalysis(2, 2)), nil)

	summary, err := f.runner.Run(context.Background(), BatchRequest{Status: video.StatusFailed})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	require.Len(t, summary.Failed, 1)
	assert.Equal(t, "broken", summary.Failed[0].VideoID)
	assert.False(t, summary.OK())

	good, err := f.videos.FindByID(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, video.StatusActive, good.Status)

	_, statErr := os.Stat(f.scratch)
	assert.True(t, os.IsNotExist(statErr), "scratch dir should be removed")
}

func TestBatch_KeepsExistingFilesInScratchDir(t *testing.T) {
	f := newBatchFixture(t)
	f.seedFailed(t, "broken")
	require.NoError(t, os.MkdirAll(f.scratch, 0o755))
	keep := filepath.Join(f.scratch, "precious.txt")
	require.NoError(t, os.WriteFile(keep, []byte("do not delete"), 0o600))

	f.fetcher.On("Download", mock.Anything, "https://storage.example.com/broken", mock.Anything).Return(nil, errors.New("connection reset"))

	summary, err := f.runner.Run(context.Background(), BatchRequest{Status: video.StatusFailed})

	require.NoError(t, err)
	require.Len(t, summary.Failed, 1)

	content, err := os.ReadFile(keep)
	require.NoError(t, err)
	assert.Equal(t, "do not delete", string(content))

	entries, err := os.ReadDir(f.scratch)
	require.NoError(t, err)
	require.Len(t, entries, 1, "run directory should be removed")
	assert.Equal(t, "precious.txt", entries[0].Name())
}

func TestBatch_ExplicitIDsSkipUnknown(t *testing.T) {
	f := newBatchFixture(t)
	f.seedFailed(t, "known")

	f.fetcher.On("Download", mock.Anything, "https://storage.example.com/known", mock.Anything).Return([]byte("bytes"), nil)
	f.model.On("GenerateFromVideo", mock.Anything, mock.Anything).
		Return(testutils.MustJSON(testutils.NewAnalysisFactory(2).CreateAnalysis(1, 1)), nil)

	summary, err := f.runner.Run(context.Background(), BatchRequest{IDs: []string{"unknown", "known"}})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.True(t, summary.OK())
	f.fetcher.AssertNumberOfCalls(t, "Download", 1)
}

func TestBatch_PreScreenRejectsWithoutAnalysis(t *testing.T) {
	f := newBatchFixture(t)
	v := f.seedFailed(t, "vlog")

	f.fetcher.On("Download", mock.Anything, "https://storage.example.com/vlog", mock.Anything).Return([]byte("bytes"), nil)
	f.model.On("GenerateFromVideo", mock.Anything, isPrompt(PreScreenPrompt)).Return(classification(false, 0.2), nil).Once()

	summary, err := f.runner.Run(context.Background(), BatchRequest{IDs: []string{v.ID}, PreScreen: true})

	require.NoError(t, err)
	assert.Equal(t, []string{"vlog"}, summary.Rejected)
	assert.Zero(t, summary.Processed)
	f.model.AssertNumberOfCalls(t, "GenerateFromVideo", 1)

	stored, err := f.videos.FindByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, video.StatusFailed, stored.Status)
}

func TestBatch_RefreshDropsCachedAnalysis(t *testing.T) {
	f := newBatchFixture(t)
	v := f.seedFailed(t, "stale")
	stale := testutils.NewAnalysisBuilder().WithTitle("Stale").Build()
	fresh := testutils.NewAnalysisBuilder().WithTitle("Fresh").Build()
	require.NoError(t, f.cache.Put(context.Background(), v.ID, stale))

	f.fetcher.On("Download", mock.Anything, "https://storage.example.com/stale", mock.Anything).Return([]byte("bytes"), nil)
	f.model.On("GenerateFromVideo", mock.Anything, mock.Anything).Return(testutils.MustJSON(fresh), nil).Once()

	_, err := f.runner.Run(context.Background(), BatchRequest{IDs: []string{v.ID}, Refresh: true})

	require.NoError(t, err)
	stored, err := f.videos.FindByID(context.Background(), v.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Analysis)
	assert.Equal(t, "Fresh", stored.Analysis.Title)
}

func TestBatch_NothingSelected(t *testing.T) {
	f := newBatchFixture(t)

	summary, err := f.runner.Run(context.Background(), BatchRequest{Status: video.StatusFailed})

	require.NoError(t, err)
	assert.True(t, summary.OK())
	assert.Zero(t, summary.Processed)
}
