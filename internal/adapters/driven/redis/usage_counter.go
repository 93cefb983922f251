package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.UsageCounter = (*UsageCounter)(nil)

// quotaPrefix is the Redis key prefix for daily quota counters
const quotaPrefix = "quota:"

// quotaTTL keeps counters around past midnight for the quota readout, then
// lets Redis reclaim them.
const quotaTTL = 48 * time.Hour

// UsageCounter implements driven.UsageCounter using Redis. Counters are
// keyed by (identity, calendar date) and expire on their own, so exhausted
// quotas reset at midnight without cleanup jobs.
type UsageCounter struct {
	client *redis.Client
}

// NewUsageCounter creates a new Redis-backed UsageCounter.
func NewUsageCounter(client *redis.Client) *UsageCounter {
	return &UsageCounter{client: client}
}

// Used returns the count consumed by identity on the given day.
func (c *UsageCounter) Used(ctx context.Context, identity, day string) (int, error) {
	used, err := c.client.Get(ctx, quotaKey(identity, day)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read quota counter: %w", err)
	}
	return used, nil
}

// Increment consumes one unit and returns the new count.
func (c *UsageCounter) Increment(ctx context.Context, identity, day string) (int, error) {
	key := quotaKey(identity, day)

	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, quotaTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment quota counter: %w", err)
	}
	return int(incr.Val()), nil
}

// Ping checks if Redis is reachable.
func (c *UsageCounter) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func quotaKey(identity, day string) string {
	return quotaPrefix + identity + ":" + day
}
