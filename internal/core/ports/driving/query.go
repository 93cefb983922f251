package driving

import (
	"context"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
)

// QueryService converts a user message into an asynchronous run against the
// bound assistant/thread and waits for its terminal state. The wait is
// blocking from the caller's perspective; no second run may be submitted on
// the same session while one is unresolved.
type QueryService interface {
	// Submit appends the user message to the session's thread, starts a
	// run, and polls it to a terminal state. Transport failures and
	// non-completed terminal states are converted into the outcome's
	// user-facing error text, never into a panic.
	Submit(ctx context.Context, session *domain.Session, userText string) domain.RunOutcome
}
