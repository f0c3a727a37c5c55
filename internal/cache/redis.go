package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the cross-restart layer above the in-process pools. Values
// are stored as JSON envelopes so a reader can apply the same staleness
// policy regardless of which layer served the hit.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis connection from a redis:// URL.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

// Client returns the underlying Redis client.
func (rs *RedisStore) Client() *redis.Client {
	return rs.client
}

// HealthCheck pings Redis with a short deadline.
func (rs *RedisStore) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return rs.client.Ping(ctx).Err()
}

// SetJSON stores value as a JSON envelope under key. The TTL is applied both
// server-side and inside the envelope.
func SetJSON[T any](ctx context.Context, rs *RedisStore, key string, value T, ttl time.Duration) error {
	data, err := json.Marshal(Wrap(value, ttl))
	if err != nil {
		return fmt.Errorf("marshaling cache value: %w", err)
	}
	return rs.client.Set(ctx, key, data, ttl).Err()
}

// GetJSON loads an envelope stored by SetJSON. It returns false on a missing
// key or an expired envelope.
func GetJSON[T any](ctx context.Context, rs *RedisStore, key string) (T, bool, error) {
	var zero T

	data, err := rs.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}

	var env Envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, false, fmt.Errorf("unmarshaling cache value: %w", err)
	}
	if env.Expired(time.Now()) {
		return zero, false, nil
	}
	return env.Value, true, nil
}

// Delete removes keys.
func (rs *RedisStore) Delete(ctx context.Context, keys ...string) error {
	return rs.client.Del(ctx, keys...).Err()
}
