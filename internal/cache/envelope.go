package cache

import "time"

// Envelope wraps a cached value with its capture time and TTL. The same
// shape is stored in the in-process LRU pools and marshaled into Redis, so
// a value survives a restart with its original expiry intact.
type Envelope[T any] struct {
	Value      T             `json:"value"`
	CapturedAt time.Time     `json:"capturedAt"`
	TTL        time.Duration `json:"ttl"`
}

// Wrap captures a value now with the given TTL. A zero TTL never expires.
func Wrap[T any](value T, ttl time.Duration) Envelope[T] {
	return Envelope[T]{Value: value, CapturedAt: time.Now(), TTL: ttl}
}

// Expired reports whether the envelope is stale at the given instant.
func (e Envelope[T]) Expired(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	return now.Sub(e.CapturedAt) > e.TTL
}
