package analysis

import (
	"context"
	"time"

	"github.com/alchemorsel/reelchef/internal/ports/outbound"
	"go.uber.org/zap"
)

// Stuck detection defaults
const (
	DefaultProcessingTimeout = 10 * time.Minute
	StuckMessage             = "processing timed out"
	stuckSweepBatch          = 100
)

// StuckDetector fails videos whose run died while they were processing, so
// the uploader is not left watching a spinner forever
type StuckDetector struct {
	videos   outbound.VideoRepository
	notifier outbound.StatusNotifier
	timeout  time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewStuckDetector creates a detector. A non-positive timeout uses the default.
func NewStuckDetector(videos outbound.VideoRepository, notifier outbound.StatusNotifier, timeout time.Duration, logger *zap.Logger) *StuckDetector {
	if timeout <= 0 {
		timeout = DefaultProcessingTimeout
	}
	return &StuckDetector{
		videos:   videos,
		notifier: notifier,
		timeout:  timeout,
		now:      time.Now,
		logger:   logger.Named("stuck-detector"),
	}
}

// Sweep marks every video processing for longer than the timeout as failed
// and returns how many it marked
func (d *StuckDetector) Sweep(ctx context.Context) (int, error) {
	cutoff := d.now().Add(-d.timeout)

	stuck, err := d.videos.FindStuck(ctx, cutoff, stuckSweepBatch)
	if err != nil {
		return 0, err
	}

	marked := 0
	for _, v := range stuck {
		if !v.IsStuck(cutoff) {
			continue
		}
		v.MarkFailed(StuckMessage)
		if err := d.videos.Save(ctx, v); err != nil {
			d.logger.Error("Failed to mark stuck video", zap.String("video_id", v.ID), zap.Error(err))
			continue
		}
		publishStatusEvents(ctx, d.notifier, d.logger, v)
		marked++
	}

	if marked > 0 {
		d.logger.Warn("Marked stuck videos as failed", zap.Int("count", marked), zap.Time("cutoff", cutoff))
	}
	return marked, nil
}
