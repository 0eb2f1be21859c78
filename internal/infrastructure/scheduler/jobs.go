package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StuckSweepJob is the job name of the stuck-video sweep
const StuckSweepJob = "stuck-video-sweep"

// Sweeper fails videos that have been processing for too long
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// ScheduleStuckSweep runs sweeper.Sweep every interval
func ScheduleStuckSweep(s *Scheduler, sweeper Sweeper, interval time.Duration) error {
	return s.Every(StuckSweepJob, interval, func(ctx context.Context) error {
		marked, err := sweeper.Sweep(ctx)
		if err != nil {
			return err
		}
		if marked > 0 {
			s.logger.Warn("Marked stuck videos as failed", zap.Int("count", marked))
		}
		return nil
	})
}
