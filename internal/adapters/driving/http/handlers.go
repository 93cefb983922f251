package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// GateRequest carries the credential for a gate login
type GateRequest struct {
	Password string `json:"password,omitempty"`
	Identity string `json:"identity,omitempty"`
}

// GateResponse is the issued gate session
type GateResponse struct {
	Token     string      `json:"token"`
	Role      domain.Role `json:"role"`
	GuestID   string      `json:"guest_id,omitempty"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// SelectCollectionRequest binds the session to a collection
type SelectCollectionRequest struct {
	CollectionID string `json:"collection_id"`
}

// ChatRequest carries one user prompt
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the composed reply plus the quota readout for guests
type ChatResponse struct {
	Reply          string `json:"reply"`
	Remaining      int    `json:"remaining,omitempty"`
	RemainingKnown bool   `json:"remaining_known"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Checks the remote assistant service and the quota backend
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A dependency is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.assistant.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "assistant service unreachable")
		return
	}
	if s.counter != nil {
		if err := s.counter.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "quota backend unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Tags         Health
// @Produce      json
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Gate endpoints

// handleGateAdmin godoc
// @Summary      Admin login
// @Description  Verify the admin password and issue an unrestricted gate token
// @Tags         Gate
// @Accept       json
// @Produce      json
// @Param        request  body      GateRequest  true  "Admin password"
// @Success      200      {object}  GateResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials"
// @Failure      503      {object}  ErrorResponse  "Admin role not configured"
// @Router       /gate/admin [post]
func (s *Server) handleGateAdmin(w http.ResponseWriter, r *http.Request) {
	var req GateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.accessService.LoginAdmin(r.Context(), req.Password)
	if err != nil {
		switch err {
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "password is required")
		case domain.ErrInvalidCredentials:
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case domain.ErrGateNotConfigured:
			writeError(w, http.StatusServiceUnavailable, "admin role not configured")
		default:
			writeError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, gateResponse(session))
}

// handleGateGuest godoc
// @Summary      Guest login
// @Description  Capture a guest identity and issue a quota-limited gate token
// @Tags         Gate
// @Accept       json
// @Produce      json
// @Param        request  body      GateRequest  true  "Guest identity"
// @Success      200      {object}  GateResponse
// @Failure      400      {object}  ErrorResponse  "Identity is required"
// @Router       /gate/guest [post]
func (s *Server) handleGateGuest(w http.ResponseWriter, r *http.Request) {
	var req GateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.accessService.LoginGuest(r.Context(), req.Identity)
	if err != nil {
		switch err {
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "identity is required")
		default:
			writeError(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, gateResponse(session))
}

// Collection endpoints

// handleListCollections godoc
// @Summary      List collections
// @Description  Lists the selectable knowledge-base collections
// @Tags         Collections
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Collection
// @Router       /collections [get]
func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := s.directory.List(r.Context())
	if err != nil {
		// The directory fails soft: an empty listing with a warning beats a
		// hard failure when the remote service is flaky.
		writeJSON(w, http.StatusOK, map[string]any{
			"collections": collections,
			"warning":     "collection listing is temporarily unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": collections})
}

// handleListDocuments godoc
// @Summary      List collection documents
// @Description  Lists the attached documents of a collection with resolved metadata
// @Tags         Collections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Collection id"
// @Success      200  {array}   domain.DocumentRef
// @Failure      502  {object}  ErrorResponse  "Listing failed"
// @Router       /collections/{id}/documents [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	collectionID := r.PathValue("id")
	docs, err := s.resolver.ListDocuments(r.Context(), collectionID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to list documents")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// Session endpoints

// handleSelectCollection godoc
// @Summary      Select a collection
// @Description  Binds the chat session to a collection, replacing any previous binding
// @Tags         Session
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      SelectCollectionRequest  true  "Collection id"
// @Success      200      {object}  domain.Session
// @Failure      400      {object}  ErrorResponse  "Collection id is required"
// @Failure      404      {object}  ErrorResponse  "Unknown collection"
// @Router       /session/collection [post]
func (s *Server) handleSelectCollection(w http.ResponseWriter, r *http.Request) {
	var req SelectCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := s.chatService.SelectCollection(r.Context(), req.CollectionID)
	if err != nil {
		switch err {
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "collection_id is required")
		case domain.ErrCollectionNotFound:
			writeError(w, http.StatusNotFound, "unknown collection")
		default:
			writeError(w, http.StatusBadGateway, "failed to select collection")
		}
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// handleHistory godoc
// @Summary      Conversation history
// @Description  Returns the recorded turns of the live session, plus starter prompts when empty
// @Tags         Session
// @Produce      json
// @Security     BearerAuth
// @Router       /session/history [get]
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	turns := s.chatService.History()
	resp := map[string]any{"turns": turns}
	if len(turns) == 0 {
		resp["suggested_prompts"] = s.chatService.SuggestedPrompts()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleResetSession godoc
// @Summary      Reset the conversation
// @Description  Clears the history and starts a fresh thread on the same collection
// @Tags         Session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Failure      409  {object}  ErrorResponse  "No collection selected"
// @Router       /session/reset [post]
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	if err := s.chatService.ResetHistory(r.Context()); err != nil {
		switch err {
		case domain.ErrSessionUnbound:
			writeError(w, http.StatusConflict, "no collection selected")
		default:
			writeError(w, http.StatusBadGateway, "failed to reset session")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Chat endpoints

// handleChat godoc
// @Summary      Submit a prompt
// @Description  Runs one prompt end to end and returns the composed reply
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      ChatRequest  true  "User prompt"
// @Success      200      {object}  ChatResponse
// @Failure      400      {object}  ErrorResponse  "Message is required"
// @Failure      409      {object}  ErrorResponse  "No collection selected"
// @Failure      429      {object}  ErrorResponse  "Daily quota exhausted"
// @Router       /chat [post]
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	access := GetAccessContext(r.Context())
	reply, err := s.chatService.HandlePrompt(r.Context(), access, req.Message)
	if err != nil {
		switch err {
		case domain.ErrInvalidInput:
			writeError(w, http.StatusBadRequest, "message is required")
		case domain.ErrSessionUnbound:
			writeError(w, http.StatusConflict, "no collection selected")
		case domain.ErrQuotaExceeded:
			writeError(w, http.StatusTooManyRequests, "daily query limit reached")
		default:
			writeError(w, http.StatusBadGateway, "chat failed")
		}
		return
	}

	resp := ChatResponse{Reply: reply}
	if remaining, ok := s.accessService.Remaining(r.Context(), access); ok {
		resp.Remaining = remaining
		resp.RemainingKnown = true
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStatus godoc
// @Summary      Session status
// @Description  Reports the active model, the live session and the caller's remaining quota
// @Tags         Chat
// @Produce      json
// @Security     BearerAuth
// @Router       /status [get]
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	access := GetAccessContext(r.Context())

	resp := map[string]any{
		"model":           s.model.Model,
		"requested_model": s.model.Requested,
		"model_fallback":  s.model.Fallback,
		"role":            access.Role,
	}
	if remaining, ok := s.accessService.Remaining(r.Context(), access); ok {
		resp["remaining_queries"] = remaining
	}
	writeJSON(w, http.StatusOK, resp)
}

// Helper functions

func gateResponse(session *domain.GateSession) GateResponse {
	return GateResponse{
		Token:     session.Token,
		Role:      session.Role,
		GuestID:   session.GuestID,
		ExpiresAt: session.ExpiresAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
