package driven

import "context"

// UsageCounter tracks guest query usage keyed by (identity, calendar date).
// Implementations give entries TTL-by-date semantics: a key for a past date
// either expires on its own (Redis), is ignored (Postgres) or is simply
// never read again (memory) - absence of a key means zero used.
type UsageCounter interface {
	// Used returns the number of queries already used by identity on day.
	// day is formatted with domain.QuotaDateLayout.
	Used(ctx context.Context, identity, day string) (int, error)

	// Increment adds one use for (identity, day) and returns the new count.
	Increment(ctx context.Context, identity, day string) (int, error)

	// Ping checks if the counter backend is healthy.
	Ping(ctx context.Context) error
}
