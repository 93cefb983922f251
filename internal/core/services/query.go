package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driving"
)

// Ensure queryService implements QueryService
var _ driving.QueryService = (*queryService)(nil)

// PollConfig parameterizes the bounded wait for run completion.
type PollConfig struct {
	// Interval between status fetches
	Interval time.Duration

	// MaxWait bounds the total wait; zero means wait indefinitely
	MaxWait time.Duration
}

// DefaultPollConfig polls every 500ms without an overall bound.
func DefaultPollConfig() PollConfig {
	return PollConfig{Interval: 500 * time.Millisecond}
}

// queryService implements the QueryService interface.
type queryService struct {
	client driven.AssistantAPI
	poll   PollConfig
	logger *slog.Logger
}

// NewQueryService creates a new QueryService.
func NewQueryService(client driven.AssistantAPI, poll PollConfig, logger *slog.Logger) driving.QueryService {
	if poll.Interval <= 0 {
		poll.Interval = DefaultPollConfig().Interval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &queryService{client: client, poll: poll, logger: logger}
}

// Submit appends the user message, starts a run, and polls it to a terminal
// state. Every failure mode maps to a user-facing outcome; nothing escapes
// as a panic or raw error.
func (s *queryService) Submit(ctx context.Context, session *domain.Session, userText string) domain.RunOutcome {
	if !session.Bound() {
		return transportOutcome(domain.ErrSessionUnbound)
	}

	if err := s.client.CreateUserMessage(ctx, session.ThreadID, userText); err != nil {
		return transportOutcome(err)
	}

	run, err := s.client.CreateRun(ctx, session.ThreadID, session.AssistantID)
	if err != nil {
		return transportOutcome(err)
	}

	started := time.Now()
	for run.Status.Pending() {
		if s.poll.MaxWait > 0 && time.Since(started) >= s.poll.MaxWait {
			s.logger.Warn("run timed out", "run_id", run.ID, "waited", time.Since(started))
			return domain.RunOutcome{
				Status:    domain.RunTimedOut,
				UserError: "Error: The assistant run timed_out. Please try again.",
			}
		}

		select {
		case <-ctx.Done():
			return transportOutcome(ctx.Err())
		case <-time.After(s.poll.Interval):
		}

		run, err = s.client.RetrieveRun(ctx, session.ThreadID, run.ID)
		if err != nil {
			return transportOutcome(err)
		}
	}

	return terminalOutcome(run.Status)
}

// terminalOutcome maps a terminal run status to its user-visible outcome.
// Each non-completed message names the status so failures stay
// distinguishable in the conversation log.
func terminalOutcome(status domain.RunStatus) domain.RunOutcome {
	switch status {
	case domain.RunCompleted:
		return domain.RunOutcome{Status: domain.RunCompleted}
	case domain.RunFailed:
		return domain.RunOutcome{Status: status, UserError: "Error: The assistant run failed. Please try again."}
	case domain.RunCancelled:
		return domain.RunOutcome{Status: status, UserError: "Error: The assistant run was cancelled. Please try again."}
	case domain.RunExpired:
		return domain.RunOutcome{Status: status, UserError: "Error: The assistant run expired. Please try again."}
	case domain.RunRequiresAction:
		return domain.RunOutcome{Status: status, UserError: "Error: The assistant run ended with status requires_action; tool actions are not supported."}
	default:
		return domain.RunOutcome{Status: status, UserError: fmt.Sprintf("Error: Run ended with status %s", status)}
	}
}

// transportOutcome converts an API or transport failure into a user-facing
// outcome.
func transportOutcome(err error) domain.RunOutcome {
	return domain.RunOutcome{
		Status:    domain.RunFailed,
		UserError: fmt.Sprintf("Error getting response: %v", err),
	}
}
