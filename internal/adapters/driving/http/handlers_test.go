package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/kbchat-core/internal/core/services"
	"github.com/custodia-labs/kbchat-core/internal/runtime"
)

type serverFixture struct {
	server  *Server
	client  *mocks.MockAssistantClient
	counter *mocks.MockUsageCounter
	gate    *mocks.MockGateAdapter
}

// newServerFixture wires real services over scripted driven adapters.
func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	client := mocks.NewMockAssistantClient()
	client.Collections = []domain.Collection{
		{ID: "vs-1", Name: "Statutes", Status: "completed", FileCount: 1},
	}
	client.Files["vs-1"] = []driven.CollectionFile{{FileID: "f1", Status: "completed"}}
	client.Filenames["f1"] = "pu_statute.pdf"
	client.Attributes["f1"] = map[string]any{
		"doc":             "Statute",
		"view_source_url": "https://x/statute.pdf",
	}

	gate := mocks.NewMockGateAdapter()
	counter := mocks.NewMockUsageCounter()

	resolver := services.NewResolverService(client, nil, time.Minute)
	directory := services.NewDirectoryService(client, time.Minute)
	sessions := services.NewSessionService(client, resolver, "gpt-4o-mini", nil)
	access := services.NewAccessService(gate, counter, "s3cret", nil)
	queries := services.NewQueryService(client, services.PollConfig{Interval: time.Millisecond}, nil)
	composer := services.NewComposerService(client, resolver)
	chat := services.NewChatService(directory, sessions, access, queries, composer, nil)

	server := NewServer(
		Config{Host: "127.0.0.1", Port: 0, Version: "test"},
		runtime.ResolveModel("gpt-4o-mini"),
		access, chat, directory, resolver,
		client, counter,
	)

	return &serverFixture{server: server, client: client, counter: counter, gate: gate}
}

func (f *serverFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

// login performs a guest login and returns the token.
func (f *serverFixture) login(t *testing.T, identity string) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/gate/guest", "", GateRequest{Identity: identity})
	if rec.Code != http.StatusOK {
		t.Fatalf("guest login failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp GateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return resp.Token
}

func TestServer_Health(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/ready", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/version", "", nil)
	if !strings.Contains(rec.Body.String(), "test") {
		t.Errorf("expected version in body, got %s", rec.Body.String())
	}
}

func TestServer_GateAdmin(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/gate/admin", "", GateRequest{Password: "s3cret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var resp GateResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Role != domain.RoleAdmin || resp.Token == "" {
		t.Errorf("unexpected gate response: %+v", resp)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/gate/admin", "", GateRequest{Password: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", rec.Code)
	}
}

func TestServer_GateGuest_RequiresIdentity(t *testing.T) {
	f := newServerFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/gate/guest", "", GateRequest{Identity: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for blank identity, got %d", rec.Code)
	}
}

func TestServer_RequiresToken(t *testing.T) {
	f := newServerFixture(t)

	paths := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/collections"},
		{http.MethodPost, "/api/v1/chat"},
		{http.MethodGet, "/api/v1/status"},
	}
	for _, p := range paths {
		rec := f.do(t, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without token, got %d", p.method, p.path, rec.Code)
		}
	}

	rec := f.do(t, http.MethodGet, "/api/v1/collections", "bogus-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bogus token, got %d", rec.Code)
	}
}

func TestServer_ListCollections(t *testing.T) {
	f := newServerFixture(t)
	token := f.login(t, "alice")

	rec := f.do(t, http.MethodGet, "/api/v1/collections", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Statutes") {
		t.Errorf("expected collection listing, got %s", rec.Body.String())
	}
}

func TestServer_ListDocuments(t *testing.T) {
	f := newServerFixture(t)
	token := f.login(t, "alice")

	rec := f.do(t, http.MethodGet, "/api/v1/collections/vs-1/documents", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Statute") {
		t.Errorf("expected resolved documents, got %s", rec.Body.String())
	}
}

func TestServer_ChatFlow(t *testing.T) {
	f := newServerFixture(t)
	token := f.login(t, "alice")

	// Chat before selecting a collection is a conflict.
	rec := f.do(t, http.MethodPost, "/api/v1/chat", token, ChatRequest{Message: "hello"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 before selection, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/v1/session/collection", token,
		SelectCollectionRequest{CollectionID: "vs-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 selecting collection, got %d %s", rec.Code, rec.Body.String())
	}

	// Script the assistant reply on whatever thread the session got.
	var session domain.Session
	json.Unmarshal(rec.Body.Bytes(), &session)
	f.client.Messages[session.ThreadID] = []domain.ThreadMessage{
		{Role: domain.TurnAssistant, Text: []domain.TextBlock{{
			Value:       "The statute requires annual review.",
			Annotations: []domain.Annotation{{FileCitationID: "f1"}},
		}}},
	}

	rec = f.do(t, http.MethodPost, "/api/v1/chat", token, ChatRequest{Message: "what does it say?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	var chatResp ChatResponse
	json.Unmarshal(rec.Body.Bytes(), &chatResp)
	if !strings.Contains(chatResp.Reply, "annual review") {
		t.Errorf("expected the answer, got %q", chatResp.Reply)
	}
	if !chatResp.RemainingKnown || chatResp.Remaining != domain.MaxGuestQueriesPerDay-1 {
		t.Errorf("expected quota readout after one query, got %+v", chatResp)
	}

	// History shows both turns.
	rec = f.do(t, http.MethodGet, "/api/v1/session/history", token, nil)
	var history struct {
		Turns []domain.Turn `json:"turns"`
	}
	json.Unmarshal(rec.Body.Bytes(), &history)
	if len(history.Turns) != 2 {
		t.Errorf("expected 2 turns, got %d", len(history.Turns))
	}

	// Reset clears them.
	rec = f.do(t, http.MethodPost, "/api/v1/session/reset", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on reset, got %d", rec.Code)
	}
	rec = f.do(t, http.MethodGet, "/api/v1/session/history", token, nil)
	if !strings.Contains(rec.Body.String(), "suggested_prompts") {
		t.Error("expected starter prompts on an empty history")
	}
}

func TestServer_Chat_QuotaExhausted(t *testing.T) {
	f := newServerFixture(t)
	token := f.login(t, "alice")

	rec := f.do(t, http.MethodPost, "/api/v1/session/collection", token,
		SelectCollectionRequest{CollectionID: "vs-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	day := time.Now().Format(domain.QuotaDateLayout)
	f.counter.Set("alice", day, domain.MaxGuestQueriesPerDay)

	rec = f.do(t, http.MethodPost, "/api/v1/chat", token, ChatRequest{Message: "hello"})
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
}

func TestServer_SelectCollection_Unknown(t *testing.T) {
	f := newServerFixture(t)
	token := f.login(t, "alice")

	rec := f.do(t, http.MethodPost, "/api/v1/session/collection", token,
		SelectCollectionRequest{CollectionID: "vs-404"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown collection, got %d", rec.Code)
	}
}

func TestServer_Status(t *testing.T) {
	f := newServerFixture(t)
	token := f.login(t, "alice")

	rec := f.do(t, http.MethodGet, "/api/v1/status", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status map[string]any
	json.Unmarshal(rec.Body.Bytes(), &status)
	if status["model"] != "gpt-4o-mini" {
		t.Errorf("expected active model reported, got %v", status["model"])
	}
	if status["model_fallback"] != false {
		t.Errorf("expected no fallback flag, got %v", status["model_fallback"])
	}
	if _, ok := status["remaining_queries"]; !ok {
		t.Error("expected a quota readout for guests")
	}
}
