package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alchemorsel/reelchef/internal/domain/video"
	"github.com/alchemorsel/reelchef/internal/ports/inbound"
	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// BatchRequest selects the videos a batch run re-analyzes. Explicit IDs take
// precedence over Status.
type BatchRequest struct {
	IDs       []string
	Status    video.Status
	Limit     int
	PreScreen bool
	Refresh   bool
}

// BatchFailure is one video that could not be analyzed
type BatchFailure struct {
	VideoID string
	Err     error
}

// BatchSummary reports what a batch run did
type BatchSummary struct {
	Processed int
	Rejected  []string
	Failed    []BatchFailure
	Duration  time.Duration
}

// OK reports whether every selected video was analyzed or deliberately skipped
func (s BatchSummary) OK() bool {
	return len(s.Failed) == 0
}

// BatchRunner re-analyzes stored videos offline. Each video is downloaded to
// a scratch directory and analyzed from disk. The scratch directory belongs to
// a single run and is removed when the run ends, whatever the outcome.
type BatchRunner struct {
	pipeline   *Pipeline
	videos     outbound.VideoRepository
	remote     *RemoteSource
	fetcher    outbound.VideoFetcher
	gate       *PreScreenGate
	scratchDir string
	logger     *zap.Logger
}

// NewBatchRunner creates a batch runner. gate may be nil when pre-screening is
// never requested.
func NewBatchRunner(
	pipeline *Pipeline,
	videos outbound.VideoRepository,
	remote *RemoteSource,
	fetcher outbound.VideoFetcher,
	gate *PreScreenGate,
	scratchDir string,
	logger *zap.Logger,
) *BatchRunner {
	return &BatchRunner{
		pipeline:   pipeline,
		videos:     videos,
		remote:     remote,
		fetcher:    fetcher,
		gate:       gate,
		scratchDir: scratchDir,
		logger:     logger.Named("batch"),
	}
}

// Run processes the selected videos one at a time. Per-video failures are
// logged and collected; only setup errors are returned.
func (b *BatchRunner) Run(ctx context.Context, req BatchRequest) (summary BatchSummary, err error) {
	start := time.Now()
	defer func() { summary.Duration = time.Since(start) }()

	if req.PreScreen && b.gate == nil {
		return summary, errors.New("pre-screen requested but no gate configured")
	}

	targets, err := b.selectVideos(ctx, req)
	if err != nil {
		return summary, err
	}
	if len(targets) == 0 {
		b.logger.Info("No videos selected")
		return summary, nil
	}

	runDir, cleanup, err := b.makeRunDir()
	if err != nil {
		return summary, err
	}
	defer cleanup()

	b.logger.Info("Starting batch", zap.Int("videos", len(targets)), zap.String("scratch_dir", runDir))

	for _, v := range targets {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		rejected, err := b.process(ctx, v, req, runDir)
		switch {
		case err != nil:
			b.logger.Error("Video failed", zap.String("video_id", v.ID), zap.Error(err))
			summary.Failed = append(summary.Failed, BatchFailure{VideoID: v.ID, Err: err})
		case rejected:
			summary.Rejected = append(summary.Rejected, v.ID)
		default:
			summary.Processed++
		}
	}

	b.logger.Info("Batch finished",
		zap.Int("processed", summary.Processed),
		zap.Int("rejected", len(summary.Rejected)),
		zap.Int("failed", len(summary.Failed)),
	)
	return summary, nil
}

func (b *BatchRunner) selectVideos(ctx context.Context, req BatchRequest) ([]*video.Video, error) {
	if len(req.IDs) == 0 {
		status := req.Status
		if status == "" {
			status = video.StatusFailed
		}
		return b.videos.FindByStatus(ctx, status, req.Limit)
	}

	out := make([]*video.Video, 0, len(req.IDs))
	for _, id := range req.IDs {
		v, err := b.videos.FindByID(ctx, id)
		if errors.Is(err, video.ErrVideoNotFound) {
			b.logger.Warn("Video not found, skipping", zap.String("video_id", id))
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// process downloads and analyzes one video. It reports rejected=true when the
// pre-screen turned the video away.
func (b *BatchRunner) process(ctx context.Context, v *video.Video, req BatchRequest, dir string) (rejected bool, err error) {
	trigger := inbound.Trigger{Source: inbound.TriggerBatch, VideoID: v.ID}

	target, err := b.remote.ResolveURL(ctx, v, trigger)
	if err != nil {
		return false, err
	}

	path := filepath.Join(dir, slug.Make(v.ID)+".mp4")
	if err := b.download(ctx, target, path); err != nil {
		return false, err
	}
	source := FileSource{Path: path}

	if req.PreScreen {
		data, err := source.Load(ctx, v, trigger)
		if err != nil {
			return false, err
		}
		result, err := b.gate.Screen(ctx, data)
		if err != nil {
			return false, err
		}
		if !result.Passes(b.gate.threshold) {
			b.logger.Info("Video rejected by pre-screen",
				zap.String("video_id", v.ID),
				zap.Float64("confidence", result.Confidence),
				zap.String("reason", result.Reason),
			)
			return true, nil
		}
	}

	if req.Refresh {
		if err := b.pipeline.Invalidate(ctx, v.ID); err != nil {
			return false, err
		}
	}

	return false, b.pipeline.RunWithSource(ctx, trigger, source)
}

// makeRunDir creates a directory owned by this run inside the scratch dir.
// cleanup removes only that directory, plus the scratch dir itself when this
// run created it and nothing else was put there.
func (b *BatchRunner) makeRunDir() (string, func(), error) {
	_, statErr := os.Stat(b.scratchDir)
	created := os.IsNotExist(statErr)

	if err := os.MkdirAll(b.scratchDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create scratch dir: %w", err)
	}
	runDir, err := os.MkdirTemp(b.scratchDir, "batch-*")
	if err != nil {
		return "", nil, fmt.Errorf("create run dir: %w", err)
	}

	cleanup := func() {
		if err := os.RemoveAll(runDir); err != nil {
			b.logger.Warn("Failed to remove scratch dir", zap.String("dir", runDir), zap.Error(err))
		}
		if created {
			// Only succeeds when empty
			_ = os.Remove(b.scratchDir)
		}
	}
	return runDir, cleanup, nil
}

func (b *BatchRunner) download(ctx context.Context, url, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scratch file: %w", err)
	}
	defer f.Close()

	n, err := b.fetcher.Download(ctx, url, f)
	if err != nil {
		return err
	}
	b.logger.Debug("Downloaded video", zap.String("path", path), zap.Int64("bytes", n))
	return nil
}
