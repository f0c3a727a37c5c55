// Package retry implements the bounded-retry loop shared by every upstream
// fetch path. A call site supplies an attempt limit, a backoff function and
// a retryable-error predicate instead of hand-rolling its own loop.
package retry

import (
	"context"
	"time"
)

// Policy controls one retried operation.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// Backoff returns the delay before retry number attempt (1-based) given
	// the error that triggered it. Nil means retry immediately.
	Backoff func(attempt int, err error) time.Duration

	// Retryable reports whether an error is worth retrying. Nil means every
	// error is retryable.
	Retryable func(err error) bool
}

// Do runs fn until it succeeds, returns a non-retryable error, the attempt
// budget is exhausted, or the context is done. The last error is returned
// after exhaustion.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && p.Backoff != nil {
			if err := sleep(ctx, p.Backoff(attempt, lastErr)); err != nil {
				return zero, err
			}
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return zero, err
		}
	}

	return zero, lastErr
}

// Ladder returns a backoff function stepping through delays by attempt
// number, clamped to the last rung.
func Ladder(delays ...time.Duration) func(attempt int, err error) time.Duration {
	return func(attempt int, _ error) time.Duration {
		if len(delays) == 0 {
			return 0
		}
		if attempt >= len(delays) {
			return delays[len(delays)-1]
		}
		if attempt < 0 {
			return delays[0]
		}
		return delays[attempt]
	}
}

// Linear returns attempt * unit.
func Linear(unit time.Duration) func(attempt int, err error) time.Duration {
	return func(attempt int, _ error) time.Duration {
		if attempt < 1 {
			return 0
		}
		return time.Duration(attempt) * unit
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
