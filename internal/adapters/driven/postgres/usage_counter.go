package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.UsageCounter = (*UsageCounter)(nil)

// UsageCounter implements driven.UsageCounter on the guest_quota table.
// One row per (identity, day); the primary key makes the upsert-based
// increment safe under concurrent instances.
type UsageCounter struct {
	db *DB
}

// NewUsageCounter creates a new Postgres-backed UsageCounter.
func NewUsageCounter(db *DB) *UsageCounter {
	return &UsageCounter{db: db}
}

// Used returns the count consumed by identity on the given day.
func (c *UsageCounter) Used(ctx context.Context, identity, day string) (int, error) {
	var used int
	err := c.db.QueryRowContext(ctx,
		`SELECT used FROM guest_quota WHERE guest_id = $1 AND day = $2`,
		identity, day,
	).Scan(&used)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read quota counter: %w", err)
	}
	return used, nil
}

// Increment consumes one unit and returns the new count.
func (c *UsageCounter) Increment(ctx context.Context, identity, day string) (int, error) {
	var used int
	err := c.db.QueryRowContext(ctx,
		`INSERT INTO guest_quota (guest_id, day, used)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (guest_id, day)
		 DO UPDATE SET used = guest_quota.used + 1, updated_at = now()
		 RETURNING used`,
		identity, day,
	).Scan(&used)
	if err != nil {
		return 0, fmt.Errorf("failed to increment quota counter: %w", err)
	}
	return used, nil
}

// Ping checks if the database is reachable.
func (c *UsageCounter) Ping(ctx context.Context) error {
	return c.db.Ping(ctx)
}
