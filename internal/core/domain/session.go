package domain

// TurnRole identifies the author of a conversation turn.
type TurnRole string

const (
	TurnUser      TurnRole = "user"
	TurnAssistant TurnRole = "assistant"
)

// Turn is one immutable entry of the conversation history.
type Turn struct {
	Role    TurnRole `json:"role"`
	Content string   `json:"content"`
}

// Session binds the currently selected collection to a remote assistant and
// thread, together with the linear conversation history. Exactly one live
// session exists per interactive caller; switching collections replaces the
// assistant/thread pair and clears the turns.
type Session struct {
	CollectionID   string `json:"collection_id"`
	CollectionName string `json:"collection_name"`
	AssistantID    string `json:"assistant_id"`
	ThreadID       string `json:"thread_id"`
	Turns          []Turn `json:"turns"`
}

// Bound reports whether the session has a usable assistant/thread pair.
// A session left half-initialised by a failed bind is not bound and must
// block queries until rebound.
func (s *Session) Bound() bool {
	return s != nil && s.AssistantID != "" && s.ThreadID != ""
}

// Append records a turn at the end of the history.
func (s *Session) Append(role TurnRole, content string) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content})
}
