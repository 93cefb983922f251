package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven/mocks"
)

func newTestSessionService(client *mocks.MockAssistantClient) *sessionService {
	resolver := NewResolverService(client, nil, time.Minute)
	svc := NewSessionService(client, resolver, "gpt-4o-mini", nil).(*sessionService)
	return svc
}

func TestSessionService_Bind_CreatesAssistantAndThread(t *testing.T) {
	client := newResolverFixture()
	svc := newTestSessionService(client)

	session, err := svc.Bind(context.Background(), domain.Collection{ID: "vs-1", Name: "Statutes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !session.Bound() {
		t.Fatal("expected bound session")
	}
	if session.AssistantID != "asst-1" || session.ThreadID != "thread-1" {
		t.Errorf("unexpected ids: %s / %s", session.AssistantID, session.ThreadID)
	}
	if len(session.Turns) != 0 {
		t.Errorf("expected empty history, got %d turns", len(session.Turns))
	}

	if len(client.CreatedAssistants) != 1 {
		t.Fatalf("expected 1 assistant created, got %d", len(client.CreatedAssistants))
	}
	spec := client.CreatedAssistants[0]
	if spec.Name != "Assistant for Statutes" {
		t.Errorf("unexpected assistant name %q", spec.Name)
	}
	if spec.Model != "gpt-4o-mini" {
		t.Errorf("unexpected model %q", spec.Model)
	}
	if len(spec.CollectionIDs) != 1 || spec.CollectionIDs[0] != "vs-1" {
		t.Errorf("expected assistant scoped to vs-1, got %v", spec.CollectionIDs)
	}
	if !strings.Contains(spec.Instructions, "'Statutes' knowledge base") {
		t.Error("expected instructions to name the collection")
	}
	if !strings.Contains(spec.Instructions, "file types: DOCX, PDF") {
		t.Errorf("expected file-type enumeration in instructions, got %q", spec.Instructions)
	}
}

func TestSessionService_Bind_SameCollectionIsNoOp(t *testing.T) {
	client := newResolverFixture()
	svc := newTestSessionService(client)
	ctx := context.Background()

	first, err := svc.Bind(ctx, domain.Collection{ID: "vs-1", Name: "Statutes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.Append(domain.TurnUser, "hello")

	second, err := svc.Bind(ctx, domain.Collection{ID: "vs-1", Name: "Statutes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != first {
		t.Error("expected the existing session unchanged")
	}
	if len(second.Turns) != 1 {
		t.Error("expected history preserved on idempotent bind")
	}
	if len(client.CreatedAssistants) != 1 {
		t.Errorf("expected no second assistant, got %d", len(client.CreatedAssistants))
	}
}

func TestSessionService_Bind_SameCollectionRefreshesName(t *testing.T) {
	client := newResolverFixture()
	svc := newTestSessionService(client)
	ctx := context.Background()

	first, err := svc.Bind(ctx, domain.Collection{ID: "vs-1", Name: "Statutes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The collection was renamed remotely; rebinding the same id picks up
	// the new display name without touching the assistant or thread.
	second, err := svc.Bind(ctx, domain.Collection{ID: "vs-1", Name: "Statutes 2024"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.CollectionName != "Statutes 2024" {
		t.Errorf("expected refreshed name, got %q", second.CollectionName)
	}
	if second.AssistantID != first.AssistantID || second.ThreadID != first.ThreadID {
		t.Error("expected the assistant/thread pair kept on a same-id rebind")
	}
	if len(client.CreatedAssistants) != 1 {
		t.Errorf("expected no second assistant, got %d", len(client.CreatedAssistants))
	}
}

func TestSessionService_Bind_SwitchReplacesEverything(t *testing.T) {
	client := newResolverFixture()
	svc := newTestSessionService(client)
	ctx := context.Background()

	first, err := svc.Bind(ctx, domain.Collection{ID: "vs-1", Name: "Statutes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.Append(domain.TurnUser, "hello")
	first.Append(domain.TurnAssistant, "hi")

	second, err := svc.Bind(ctx, domain.Collection{ID: "vs-2", Name: "Handbooks"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if second.AssistantID == first.AssistantID {
		t.Error("expected a brand-new assistant id on switch")
	}
	if second.ThreadID == first.ThreadID {
		t.Error("expected a brand-new thread id on switch")
	}
	if len(second.Turns) != 0 {
		t.Errorf("expected empty history on switch, got %d turns", len(second.Turns))
	}
	if len(client.DeletedAssistants) != 1 || client.DeletedAssistants[0] != first.AssistantID {
		t.Errorf("expected old assistant deleted, got %v", client.DeletedAssistants)
	}
}

func TestSessionService_Bind_DeleteFailureSwallowed(t *testing.T) {
	client := newResolverFixture()
	svc := newTestSessionService(client)
	ctx := context.Background()

	if _, err := svc.Bind(ctx, domain.Collection{ID: "vs-1", Name: "Statutes"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client.DeleteAssistantErr = errors.New("remote refused")
	session, err := svc.Bind(ctx, domain.Collection{ID: "vs-2", Name: "Handbooks"})
	if err != nil {
		t.Fatalf("expected delete failure to be swallowed, got %v", err)
	}
	if !session.Bound() {
		t.Error("expected rebind to succeed despite delete failure")
	}
}

func TestSessionService_Bind_CreateFailureLeavesUnbound(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(*mocks.MockAssistantClient)
	}{
		{"assistant creation fails", func(c *mocks.MockAssistantClient) {
			c.CreateAssistantErr = errors.New("model rejected")
		}},
		{"thread creation fails", func(c *mocks.MockAssistantClient) {
			c.CreateThreadErr = errors.New("quota")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newResolverFixture()
			svc := newTestSessionService(client)
			tt.prepare(client)

			_, err := svc.Bind(context.Background(), domain.Collection{ID: "vs-1", Name: "Statutes"})
			if err == nil {
				t.Fatal("expected bind error")
			}
			if svc.Current().Bound() {
				t.Error("expected session left unbound after failed bind")
			}
		})
	}
}

func TestSessionService_Reset(t *testing.T) {
	client := newResolverFixture()
	svc := newTestSessionService(client)
	ctx := context.Background()

	session, err := svc.Bind(ctx, domain.Collection{ID: "vs-1", Name: "Statutes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	session.Append(domain.TurnUser, "hello")
	oldThread := session.ThreadID
	oldAssistant := session.AssistantID

	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	current := svc.Current()
	if current.ThreadID == oldThread {
		t.Error("expected a fresh thread on reset")
	}
	if current.AssistantID != oldAssistant {
		t.Error("expected the same assistant on reset")
	}
	if len(current.Turns) != 0 {
		t.Error("expected history cleared on reset")
	}
}

func TestSessionService_Reset_Unbound(t *testing.T) {
	client := newResolverFixture()
	svc := newTestSessionService(client)

	if err := svc.Reset(context.Background()); err != domain.ErrSessionUnbound {
		t.Errorf("expected ErrSessionUnbound, got %v", err)
	}
}

func TestSessionService_Bind_NoFileTypesOmitsEnumeration(t *testing.T) {
	client := mocks.NewMockAssistantClient()
	client.Files["vs-9"] = []driven.CollectionFile{}
	svc := newTestSessionService(client)

	_, err := svc.Bind(context.Background(), domain.Collection{ID: "vs-9", Name: "Empty"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(client.CreatedAssistants[0].Instructions, "file types") {
		t.Error("expected no file-type line for an empty collection")
	}
}
