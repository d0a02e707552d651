package poll_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/entrhq/safearena/pkg/poll"
	"github.com/entrhq/safearena/pkg/poll/polltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var opts = poll.Options{Interval: 20 * time.Second, Timeout: 10 * time.Minute}

func TestUntilReadyImmediately(t *testing.T) {
	clock := polltest.NewClock()
	calls := 0

	err := poll.Until(context.Background(), clock, opts, func(context.Context) (bool, error) {
		calls++
		return true, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.Sleeps())
}

func TestUntilReadyAfterSomePolls(t *testing.T) {
	clock := polltest.NewClock()
	calls := 0

	err := poll.Until(context.Background(), clock, opts, func(context.Context) (bool, error) {
		calls++
		return calls == 4, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{20 * time.Second, 20 * time.Second, 20 * time.Second}, clock.Sleeps())
}

func TestUntilTimeout(t *testing.T) {
	clock := polltest.NewClock()
	var waits []time.Duration

	o := opts
	o.OnWait = func(elapsed time.Duration) { waits = append(waits, elapsed) }

	err := poll.Until(context.Background(), clock, o, func(context.Context) (bool, error) {
		return false, nil
	})

	var timeoutErr *poll.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Greater(t, timeoutErr.Elapsed, 10*time.Minute)
	assert.Equal(t, 10*time.Minute, timeoutErr.Timeout)
	// 600s is not yet over the limit, so polling continues until 620s
	assert.Equal(t, 620*time.Second, timeoutErr.Elapsed)
	assert.Len(t, clock.Sleeps(), 31)
	assert.Len(t, waits, 32)
}

func TestUntilCheckError(t *testing.T) {
	clock := polltest.NewClock()
	boom := errors.New("boom")

	err := poll.Until(context.Background(), clock, opts, func(context.Context) (bool, error) {
		return false, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, clock.Sleeps())
}

func TestUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := poll.Until(ctx, polltest.NewClock(), opts, func(context.Context) (bool, error) {
		return false, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSystemClockSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := poll.SystemClock{}.Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRetry(t *testing.T) {
	t.Run("succeeds on first attempt", func(t *testing.T) {
		calls := 0
		err := poll.Retry(context.Background(), 3, func(context.Context) error {
			calls++
			return nil
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		var left []int
		err := poll.Retry(context.Background(), 3, func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("not yet")
			}
			return nil
		}, func(l int, _ error) { left = append(left, l) })
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{2, 1}, left)
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		calls := 0
		err := poll.Retry(context.Background(), 3, func(context.Context) error {
			calls++
			return errors.New("attempt " + string(rune('0'+calls)))
		}, nil)
		require.Error(t, err)
		assert.Equal(t, "attempt 3", err.Error())
		assert.Equal(t, 3, calls)
	})

	t.Run("at least one attempt", func(t *testing.T) {
		calls := 0
		_ = poll.Retry(context.Background(), 0, func(context.Context) error {
			calls++
			return nil
		}, nil)
		assert.Equal(t, 1, calls)
	})
}
