package memory

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.UsageCounter = (*UsageCounter)(nil)

// counterTTL keeps per-day counters past midnight, then drops them.
const counterTTL = 48 * time.Hour

// UsageCounter implements driven.UsageCounter in process memory. It is the
// default backend for single-instance deployments; counters do not survive
// a restart.
type UsageCounter struct {
	mu     sync.Mutex
	counts *cache.Cache
}

// NewUsageCounter creates a new in-memory UsageCounter.
func NewUsageCounter() *UsageCounter {
	return &UsageCounter{
		counts: cache.New(counterTTL, counterTTL/2),
	}
}

// Used returns the count consumed by identity on the given day.
func (c *UsageCounter) Used(ctx context.Context, identity, day string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.counts.Get(identity + "|" + day); ok {
		return v.(int), nil
	}
	return 0, nil
}

// Increment consumes one unit and returns the new count.
func (c *UsageCounter) Increment(ctx context.Context, identity, day string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := identity + "|" + day
	used := 0
	if v, ok := c.counts.Get(key); ok {
		used = v.(int)
	}
	used++
	c.counts.Set(key, used, cache.DefaultExpiration)
	return used, nil
}

// Ping always succeeds for the in-process backend.
func (c *UsageCounter) Ping(ctx context.Context) error {
	return nil
}
