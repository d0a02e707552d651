// Package poll implements fixed-interval polling with a deadline and
// fixed-attempt retries.
package poll

import (
	"context"
	"fmt"
	"time"
)

// Clock abstracts time so loops can be driven by tests.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep waits for d, returning early with ctx.Err() if ctx is cancelled.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TimeoutError is returned by Until when the condition never held.
type TimeoutError struct {
	Elapsed time.Duration
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("still waiting after %.0f seconds (> %.0f)", e.Elapsed.Seconds(), e.Timeout.Seconds())
}

// Options configures Until.
type Options struct {
	// Interval is the fixed delay between checks
	Interval time.Duration

	// Timeout bounds the total time spent polling
	Timeout time.Duration

	// OnWait is called before each sleep with the elapsed time
	OnWait func(elapsed time.Duration)
}

// CheckFunc reports whether the awaited condition holds. A non-nil error
// aborts polling.
type CheckFunc func(ctx context.Context) (done bool, err error)

// Until calls check until it reports done, returns an error, or the
// elapsed time exceeds opts.Timeout. The first check runs immediately.
func Until(ctx context.Context, clock Clock, opts Options, check CheckFunc) error {
	start := clock.Now()
	for {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		elapsed := clock.Now().Sub(start)
		if opts.OnWait != nil {
			opts.OnWait(elapsed)
		}
		if elapsed > opts.Timeout {
			return &TimeoutError{Elapsed: elapsed, Timeout: opts.Timeout}
		}

		if err := clock.Sleep(ctx, opts.Interval); err != nil {
			return err
		}
	}
}

// Retry runs fn up to attempts times without delay and returns nil on the
// first success or the last error once attempts are exhausted. onRetry, if
// set, sees each failure that will be retried.
func Retry(ctx context.Context, attempts int, fn func(ctx context.Context) error, onRetry func(left int, err error)) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for left := attempts - 1; left >= 0; left-- {
		if err = fn(ctx); err == nil {
			return nil
		}
		if left == 0 {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if onRetry != nil {
			onRetry(left, err)
		}
	}
	return err
}
