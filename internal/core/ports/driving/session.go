package driving

import (
	"context"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
)

// SessionService owns the (collection, assistant, thread) binding and the
// conversation history attached to it.
type SessionService interface {
	// Bind ensures a session exists for the given collection. Binding the
	// already-bound collection keeps the assistant, thread and history and
	// only refreshes the collection display name; binding a different
	// one deletes the old assistant (best effort), creates a fresh
	// assistant and thread, and clears the history. On creation failure the
	// session is left unbound and queries must be blocked until rebound.
	Bind(ctx context.Context, collection domain.Collection) (*domain.Session, error)

	// Reset creates a fresh thread under the same assistant and clears the
	// history. Used for "clear history" without a full rebind.
	Reset(ctx context.Context) error

	// Current returns the live session, or nil when nothing is bound yet.
	Current() *domain.Session
}
