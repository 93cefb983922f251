package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
)

// CollectionFile is one raw file attachment of a collection as reported by
// the remote service, before metadata resolution.
type CollectionFile struct {
	FileID string
	Status string
}

// AssistantSpec describes the remote assistant to create for one collection.
type AssistantSpec struct {
	Name          string
	Instructions  string
	Model         string
	CollectionIDs []string
}

// CollectionAPI is the collection/file surface of the remote retrieval
// service (vector stores and files). The service owns all of this state;
// kbchat only reads and, for the ingestion utility, uploads.
type CollectionAPI interface {
	// ListCollections lists all available collections
	ListCollections(ctx context.Context) ([]domain.Collection, error)

	// RetrieveCollection retrieves one collection by id
	RetrieveCollection(ctx context.Context, id string) (*domain.Collection, error)

	// CreateCollection creates a new named collection
	CreateCollection(ctx context.Context, name string) (*domain.Collection, error)

	// ListCollectionFiles lists the file attachments of a collection
	ListCollectionFiles(ctx context.Context, collectionID string) ([]CollectionFile, error)

	// RetrieveFileAttributes retrieves the raw attribute bag of an attachment.
	// An attachment without attributes yields an empty (not nil-error) bag.
	RetrieveFileAttributes(ctx context.Context, collectionID, fileID string) (map[string]any, error)

	// RetrieveFilename resolves a file id to its original filename
	RetrieveFilename(ctx context.Context, fileID string) (string, error)

	// UploadFile uploads file content for assistant use and returns the file id
	UploadFile(ctx context.Context, filename string, content io.Reader) (string, error)

	// AttachFile attaches an uploaded file to a collection, optionally with
	// an attribute bag
	AttachFile(ctx context.Context, collectionID, fileID string, attributes map[string]any) error

	// DetachFile removes a file attachment from a collection
	DetachFile(ctx context.Context, collectionID, fileID string) error
}

// AssistantAPI is the conversational surface of the remote service:
// assistants, threads, messages and runs.
type AssistantAPI interface {
	// CreateAssistant creates an assistant scoped to the spec's collections
	// and returns its id
	CreateAssistant(ctx context.Context, spec AssistantSpec) (string, error)

	// DeleteAssistant deletes an assistant. Callers performing cleanup may
	// ignore the error; a leaked remote assistant is acceptable.
	DeleteAssistant(ctx context.Context, assistantID string) error

	// CreateThread creates a fresh conversation thread and returns its id
	CreateThread(ctx context.Context) (string, error)

	// CreateUserMessage appends a user message to a thread
	CreateUserMessage(ctx context.Context, threadID, text string) error

	// CreateRun starts an asynchronous run of the assistant on the thread
	CreateRun(ctx context.Context, threadID, assistantID string) (*domain.Run, error)

	// RetrieveRun fetches the current status of a run
	RetrieveRun(ctx context.Context, threadID, runID string) (*domain.Run, error)

	// ListMessages lists the messages of a thread, newest first
	ListMessages(ctx context.Context, threadID string) ([]domain.ThreadMessage, error)
}

// AssistantClient is the full remote service boundary. The OpenAI adapter
// implements it; tests substitute a scripted double.
type AssistantClient interface {
	CollectionAPI
	AssistantAPI
}
