package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driving"
)

// Ensure sessionService implements SessionService
var _ driving.SessionService = (*sessionService)(nil)

// instructionTemplate seeds every assistant with the in-scope-only
// answering policy. The single %s is the collection display name. The
// refusal policy makes an exception for users explicitly asking for
// document links, which the composer serves directly.
const instructionTemplate = `You are a knowledgeable AI assistant with access to documents in the '%s' knowledge base.

Your role is to:
- Strictly provide accurate, detailed answers based on the documents in the knowledge base only and nothing else.
- Strictly decline to answer any questions that are not related to the documents in the knowledge base, unless the user explicitly asks for links to the documents themselves.
- Your response should be well crafted and easy to understand.
- You should also be ready to walk users through the documents in the knowledge base step by step steadily.

Always prioritize accuracy and cite your sources when answering questions.`

// sessionService implements the SessionService interface. It owns the
// single live session; access is serialized by mu because the interactive
// caller is single-threaded but the HTTP adapter is not.
type sessionService struct {
	mu       sync.Mutex
	client   driven.AssistantAPI
	resolver driving.ResolverService
	model    string
	logger   *slog.Logger
	current  *domain.Session
}

// NewSessionService creates a new SessionService using the given chat model
// for assistant creation.
func NewSessionService(client driven.AssistantAPI, resolver driving.ResolverService, model string, logger *slog.Logger) driving.SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &sessionService{
		client:   client,
		resolver: resolver,
		model:    model,
		logger:   logger,
	}
}

// Bind ensures a session exists for the collection. Binding the same
// collection id again keeps the assistant/thread pair and the history,
// refreshing only the display name (a remote rename does not reach the
// assistant's instructions until a full switch); anything else tears the
// old assistant down (best effort) and builds a fresh assistant/thread
// pair.
func (s *sessionService) Bind(ctx context.Context, collection domain.Collection) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.CollectionID == collection.ID {
		s.current.CollectionName = collection.Name
		return s.current, nil
	}

	// Best-effort cleanup of the previous assistant. A leaked remote
	// assistant is acceptable; a crashed session is not.
	if s.current != nil && s.current.AssistantID != "" {
		if err := s.client.DeleteAssistant(ctx, s.current.AssistantID); err != nil {
			s.logger.Warn("failed to delete previous assistant",
				"assistant_id", s.current.AssistantID, "error", err)
		}
	}
	s.current = nil

	assistantID, err := s.client.CreateAssistant(ctx, driven.AssistantSpec{
		Name:          fmt.Sprintf("Assistant for %s", collection.Name),
		Instructions:  s.buildInstructions(ctx, collection),
		Model:         s.model,
		CollectionIDs: []string{collection.ID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create assistant: %w", err)
	}

	threadID, err := s.client.CreateThread(ctx)
	if err != nil {
		// Leave the session unbound; the orphaned assistant is cleaned up
		// best effort.
		if derr := s.client.DeleteAssistant(ctx, assistantID); derr != nil {
			s.logger.Warn("failed to delete orphaned assistant",
				"assistant_id", assistantID, "error", derr)
		}
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}

	s.current = &domain.Session{
		CollectionID:   collection.ID,
		CollectionName: collection.Name,
		AssistantID:    assistantID,
		ThreadID:       threadID,
		Turns:          []domain.Turn{},
	}
	s.logger.Info("session bound",
		"collection_id", collection.ID, "assistant_id", assistantID, "thread_id", threadID)
	return s.current, nil
}

// Reset starts a fresh thread under the same assistant and clears the
// conversation history.
func (s *sessionService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current.Bound() {
		return domain.ErrSessionUnbound
	}

	threadID, err := s.client.CreateThread(ctx)
	if err != nil {
		return fmt.Errorf("failed to create thread: %w", err)
	}

	s.current.ThreadID = threadID
	s.current.Turns = []domain.Turn{}
	return nil
}

// Current returns the live session, or nil when unbound.
func (s *sessionService) Current() *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// buildInstructions renders the instruction template, appending the
// collection's file-type enumeration when it can be resolved.
func (s *sessionService) buildInstructions(ctx context.Context, collection domain.Collection) string {
	instructions := fmt.Sprintf(instructionTemplate, collection.Name)
	if summary, ok := s.resolver.SummarizeFileTypes(ctx, collection.ID); ok {
		instructions += fmt.Sprintf("\n\nThe knowledge base contains the following file types: %s.", summary)
	}
	return instructions
}
