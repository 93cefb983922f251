package driving

import (
	"context"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
)

// ChatService orchestrates the full flow: collection selection, access
// check, query submission, response composition and history recording.
type ChatService interface {
	// SelectCollection binds the session to the collection with the given
	// id, recreating assistant and thread when the selection changed.
	SelectCollection(ctx context.Context, collectionID string) (*domain.Session, error)

	// HandlePrompt runs one user prompt through quota check, query engine
	// and composer, appends both turns to the history, and returns the
	// assistant reply. A quota refusal returns domain.ErrQuotaExceeded and
	// records nothing.
	HandlePrompt(ctx context.Context, access *domain.AccessContext, text string) (string, error)

	// ResetHistory clears the conversation and starts a fresh thread.
	ResetHistory(ctx context.Context) error

	// History returns the recorded turns of the live session.
	History() []domain.Turn

	// SuggestedPrompts returns starter questions for an empty history.
	SuggestedPrompts() []string
}
