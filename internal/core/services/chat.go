package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driving"
)

// Ensure chatService implements ChatService
var _ driving.ChatService = (*chatService)(nil)

// suggestedPrompts are the starter questions offered on an empty history.
var suggestedPrompts = []string{
	"What topics are covered in the documents?",
	"What are the key learning objectives?",
	"Can you provide a summary of the main document?",
	"What are the most important concepts?",
}

// chatService implements the ChatService interface. It is the orchestrator:
// collection selection, access check, query submission, response
// composition and history recording flow through here in order. mu
// serializes everything touching the live session, so at most one run is in
// flight per session and a rebind or reset cannot interleave with a query.
type chatService struct {
	mu        sync.Mutex
	directory driving.DirectoryService
	sessions  driving.SessionService
	access    driving.AccessService
	queries   driving.QueryService
	composer  driving.ComposerService
	logger    *slog.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(
	directory driving.DirectoryService,
	sessions driving.SessionService,
	access driving.AccessService,
	queries driving.QueryService,
	composer driving.ComposerService,
	logger *slog.Logger,
) driving.ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &chatService{
		directory: directory,
		sessions:  sessions,
		access:    access,
		queries:   queries,
		composer:  composer,
		logger:    logger,
	}
}

// SelectCollection binds the session to the collection with the given id.
// It waits for any in-flight prompt to finish before rebinding.
func (s *chatService) SelectCollection(ctx context.Context, collectionID string) (*domain.Session, error) {
	if collectionID == "" {
		return nil, domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	collections, err := s.directory.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range collections {
		if c.ID == collectionID {
			return s.sessions.Bind(ctx, c)
		}
	}
	return nil, domain.ErrCollectionNotFound
}

// HandlePrompt runs one user prompt end to end. A quota refusal happens
// before anything is recorded; every other outcome - answer or error text -
// is appended to the history so the conversation log reflects it. Prompts
// are handled one at a time: a second caller blocks until the current run
// resolves rather than submitting onto the same thread.
func (s *chatService) HandlePrompt(ctx context.Context, access *domain.AccessContext, text string) (string, error) {
	if text == "" {
		return "", domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.sessions.Current()
	if !session.Bound() {
		return "", domain.ErrSessionUnbound
	}

	if err := s.access.Authorize(ctx, access); err != nil {
		return "", err
	}

	session.Append(domain.TurnUser, text)

	outcome := s.queries.Submit(ctx, session, text)

	var reply string
	if outcome.Completed() {
		composed, err := s.composer.Compose(ctx, session.ThreadID, session.CollectionID, text)
		if err != nil {
			reply = fmt.Sprintf("Error getting response: %v", err)
		} else {
			reply = composed
		}
	} else {
		reply = outcome.UserError
	}

	session.Append(domain.TurnAssistant, reply)
	return reply, nil
}

// ResetHistory clears the conversation and starts a fresh thread. It waits
// for any in-flight prompt to finish first.
func (s *chatService) ResetHistory(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Reset(ctx)
}

// History returns a snapshot of the recorded turns of the live session.
func (s *chatService) History() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.sessions.Current()
	if session == nil {
		return nil
	}
	turns := make([]domain.Turn, len(session.Turns))
	copy(turns, session.Turns)
	return turns
}

// SuggestedPrompts returns starter questions for an empty history.
func (s *chatService) SuggestedPrompts() []string {
	out := make([]string, len(suggestedPrompts))
	copy(out, suggestedPrompts)
	return out
}
