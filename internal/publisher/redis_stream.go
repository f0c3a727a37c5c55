// Package publisher pushes freshly computed trend reports onto a Redis
// stream for downstream consumers (pricing, alerting).
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/apollo/internal/model"
)

const trendStream = "trends.snapshots.basketball_nba"

// RedisStreamPublisher publishes trend reports to a Redis stream.
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a publisher from an existing client.
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client}
}

// PublishTrend appends one report to the trend stream.
func (p *RedisStreamPublisher) PublishTrend(ctx context.Context, report model.TrendReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding trend report: %w", err)
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: trendStream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err(); err != nil {
		return fmt.Errorf("publishing trend report: %w", err)
	}
	return nil
}
