package nbastats

import (
	"errors"
	"fmt"
	"time"
)

// ErrPlayerNotFound means the upstream could not resolve a display name to a
// stable player ID. Callers treat this as "no statistics available", not as
// a fatal condition.
var ErrPlayerNotFound = errors.New("player not found")

// RateLimitError signals an upstream 429 that carried no usable payload.
type RateLimitError struct {
	// RetryAfter is the server-provided delay hint, zero when absent.
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// UpstreamError is a non-2xx, non-429 HTTP response.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// IsRateLimited reports whether err is (or wraps) a rate-limit signal.
func IsRateLimited(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}

// retryable classifies fetch errors: rate limits and server-side failures
// are retried, client errors are not, transport errors are retried.
func retryable(err error) bool {
	if IsRateLimited(err) {
		return true
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Status >= 500
	}
	if errors.Is(err, ErrPlayerNotFound) {
		return false
	}
	return true
}
