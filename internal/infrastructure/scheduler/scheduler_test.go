package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingSweeper struct {
	calls int32
	err   error
}

func (c *countingSweeper) Sweep(ctx context.Context) (int, error) {
	atomic.AddInt32(&c.calls, 1)
	return 1, c.err
}

func TestScheduler_RunsStuckSweepRepeatedly(t *testing.T) {
	s := New(time.Second, zaptest.NewLogger(t))
	sweeper := &countingSweeper{}
	require.NoError(t, ScheduleStuckSweep(s, sweeper, 50*time.Millisecond))

	s.Start()
	defer s.Stop()

	assert.True(t, s.IsRunning())
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&sweeper.calls) >= 2 }, 2*time.Second, 10*time.Millisecond)

	next, ok := s.NextRun(StuckSweepJob)
	assert.True(t, ok)
	assert.False(t, next.IsZero())
}

func TestScheduler_FailingJobKeepsRunning(t *testing.T) {
	s := New(time.Second, zaptest.NewLogger(t))
	sweeper := &countingSweeper{err: errors.New("database unavailable")}
	require.NoError(t, ScheduleStuckSweep(s, sweeper, 50*time.Millisecond))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&sweeper.calls) >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduler_RejectsDuplicateJob(t *testing.T) {
	s := New(0, zaptest.NewLogger(t))
	task := func(context.Context) error { return nil }

	require.NoError(t, s.Every("job", time.Minute, task))
	assert.Error(t, s.Every("job", time.Minute, task))

	_, ok := s.NextRun("missing")
	assert.False(t, ok)
}
