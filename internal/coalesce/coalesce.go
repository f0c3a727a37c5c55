// Package coalesce deduplicates concurrent fetches for the same key: while
// a call for a key is outstanding, later callers join it and observe the
// same outcome instead of issuing duplicate upstream requests. On
// completion, success or failure, the key starts fresh.
package coalesce

import "golang.org/x/sync/singleflight"

// Group is a typed single-flight group.
type Group[V any] struct {
	sf singleflight.Group
}

// Do runs fn once per outstanding key. Concurrent callers for the same key
// block and receive the result of the one in-flight invocation.
func (g *Group[V]) Do(key string, fn func() (V, error)) (V, error) {
	v, err, _ := g.sf.Do(key, func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Forget drops any in-flight record for key so the next Do starts fresh.
func (g *Group[V]) Forget(key string) {
	g.sf.Forget(key)
}
