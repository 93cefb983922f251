package driving

import (
	"context"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
)

// AccessService gates usage by role before a query may reach the query
// engine: admin is unrestricted, guests are rate limited per identity per
// calendar day.
type AccessService interface {
	// LoginAdmin verifies the admin password and issues a gate token.
	LoginAdmin(ctx context.Context, password string) (*domain.GateSession, error)

	// LoginGuest captures a free-text guest identity and issues a gate
	// token. The identity must be non-empty after trimming.
	LoginGuest(ctx context.Context, identity string) (*domain.GateSession, error)

	// Validate parses a gate token into an access context.
	Validate(ctx context.Context, token string) (*domain.AccessContext, error)

	// Authorize checks and consumes quota for one query. Admins always
	// pass. A guest at the daily limit gets domain.ErrQuotaExceeded with no
	// increment; otherwise usage is incremented and the query may proceed.
	Authorize(ctx context.Context, access *domain.AccessContext) error

	// Remaining reports the guest's remaining daily queries. limited is
	// false for admins.
	Remaining(ctx context.Context, access *domain.AccessContext) (remaining int, limited bool)
}
