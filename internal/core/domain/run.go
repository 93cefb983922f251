package domain

// RunStatus is the lifecycle state of one asynchronous assistant run.
type RunStatus string

const (
	RunQueued         RunStatus = "queued"
	RunInProgress     RunStatus = "in_progress"
	RunCancelling     RunStatus = "cancelling"
	RunCompleted      RunStatus = "completed"
	RunFailed         RunStatus = "failed"
	RunCancelled      RunStatus = "cancelled"
	RunExpired        RunStatus = "expired"
	RunRequiresAction RunStatus = "requires_action"

	// RunTimedOut is a local terminal outcome produced when the bounded poll
	// wait elapses. The remote service never reports it.
	RunTimedOut RunStatus = "timed_out"
)

// Pending reports whether the run is still being worked on by the remote
// service and should be polled again.
func (s RunStatus) Pending() bool {
	switch s {
	case RunQueued, RunInProgress, RunCancelling:
		return true
	}
	return false
}

// Run is one in-flight question-answering job. It exists only for the
// duration of a single query and is never persisted.
type Run struct {
	ID          string    `json:"id"`
	ThreadID    string    `json:"thread_id"`
	AssistantID string    `json:"assistant_id"`
	Status      RunStatus `json:"status"`
}

// RunOutcome classifies how a submitted query ended. For every status other
// than RunCompleted, UserError carries the text shown to the user (and
// recorded into the conversation history).
type RunOutcome struct {
	Status    RunStatus `json:"status"`
	UserError string    `json:"user_error,omitempty"`
}

// Completed reports whether the run produced an answer to compose.
func (o RunOutcome) Completed() bool {
	return o.Status == RunCompleted
}
