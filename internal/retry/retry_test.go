package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func TestDoStopsAfterMaxAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Policy{MaxAttempts: 4}, func(context.Context) (int, error) {
		calls++
		return 0, errTransient
	})
	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 4, calls, "must attempt exactly MaxAttempts times, never indefinitely")
}

func TestDoSucceedsMidway(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), Policy{MaxAttempts: 4}, func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errTransient
		}
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 3, calls)
}

func TestDoNonRetryableStopsImmediately(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0
	_, err := Do(context.Background(), Policy{
		MaxAttempts: 5,
		Retryable:   func(err error) bool { return !errors.Is(err, fatal) },
	}, func(context.Context) (int, error) {
		calls++
		return 0, fatal
	})
	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, Policy{
		MaxAttempts: 10,
		Backoff:     func(int, error) time.Duration { return time.Hour },
	}, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errTransient
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestLadderClampsToLastRung(t *testing.T) {
	b := Ladder(0, time.Second, 2*time.Second, 5*time.Second, 10*time.Second)
	assert.Equal(t, time.Duration(0), b(0, nil))
	assert.Equal(t, time.Second, b(1, nil))
	assert.Equal(t, 2*time.Second, b(2, nil))
	assert.Equal(t, 5*time.Second, b(3, nil))
	assert.Equal(t, 10*time.Second, b(4, nil))
	assert.Equal(t, 10*time.Second, b(99, nil))
}

func TestLinear(t *testing.T) {
	b := Linear(time.Second)
	assert.Equal(t, time.Second, b(1, nil))
	assert.Equal(t, 3*time.Second, b(3, nil))
}
