// Package retry wraps fallible operations in a bounded exponential backoff.
package retry

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds a retry sequence. MaxRetries counts retries after the first
// attempt, so MaxRetries=3 allows four calls in total.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
}

// NotifyFunc observes a failed attempt before the executor waits delay.
// attempt is 1-based.
type NotifyFunc func(attempt int, err error, delay time.Duration)

// Option customizes a single Do call
type Option func(*settings)

type settings struct {
	notify NotifyFunc
}

// WithNotify registers an observer for failed attempts that will be retried
func WithNotify(fn NotifyFunc) Option {
	return func(s *settings) {
		s.notify = fn
	}
}

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do calls op until it succeeds or the policy is exhausted. The delay starts at
// InitialDelay and doubles after every failure. The last error is returned
// unchanged. Cancelling ctx interrupts the wait and returns ctx.Err().
func Do[T any](ctx context.Context, policy Policy, op func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	var (
		result  T
		attempt int
	)

	operation := func() error {
		attempt++
		value, err := op(ctx)
		if err != nil {
			return err
		}
		result = value
		return nil
	}

	var notify backoff.Notify
	if s.notify != nil {
		notify = func(err error, delay time.Duration) {
			s.notify(attempt, err, delay)
		}
	}

	err := backoff.RetryNotify(operation, newSchedule(ctx, policy), notify)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Run is Do for operations without a result value
func Run(ctx context.Context, policy Policy, op func(ctx context.Context) error, opts ...Option) error {
	_, err := Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, opts...)
	return err
}

func newSchedule(ctx context.Context, policy Policy) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = policy.InitialDelay
	exp.RandomizationFactor = 0
	exp.Multiplier = 2
	exp.MaxInterval = time.Duration(math.MaxInt64)
	exp.MaxElapsedTime = 0
	exp.Reset()

	retries := policy.MaxRetries
	if retries < 0 {
		retries = 0
	}

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}
