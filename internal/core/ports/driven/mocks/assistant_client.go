package mocks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
)

// MockAssistantClient is a scripted in-memory implementation of the full
// remote service boundary for testing. Fixture fields are set directly;
// *Err fields inject failures per operation.
type MockAssistantClient struct {
	mu sync.RWMutex

	// Fixtures
	Collections []domain.Collection
	Files       map[string][]driven.CollectionFile  // collection id -> attachments
	Filenames   map[string]string                   // file id -> filename
	Attributes  map[string]map[string]any           // file id -> attribute bag
	Messages    map[string][]domain.ThreadMessage   // thread id -> newest-first messages
	RunStatuses []domain.RunStatus                  // successive RetrieveRun statuses

	// Error injection
	ListCollectionsErr error
	ListFilesErr       error
	CreateAssistantErr error
	DeleteAssistantErr error
	CreateThreadErr    error
	CreateMessageErr   error
	CreateRunErr       error
	RetrieveRunErr     error
	ListMessagesErr    error
	FilenameErrs       map[string]error // per-file failures
	AttributeErrs      map[string]error

	// Recorded calls
	CreatedAssistants []driven.AssistantSpec
	DeletedAssistants []string
	UserMessages      map[string][]string // thread id -> appended texts
	Uploaded          map[string][]byte   // file id -> content
	Attached          map[string]map[string]any

	listCollectionCalls int
	listFileCalls       int
	assistantSeq        int
	threadSeq           int
	runSeq              int
	fileSeq             int
	runPolls            int
}

// NewMockAssistantClient creates an empty scripted client.
func NewMockAssistantClient() *MockAssistantClient {
	return &MockAssistantClient{
		Files:        make(map[string][]driven.CollectionFile),
		Filenames:    make(map[string]string),
		Attributes:   make(map[string]map[string]any),
		Messages:     make(map[string][]domain.ThreadMessage),
		FilenameErrs: make(map[string]error),
		AttributeErrs: make(map[string]error),
		UserMessages: make(map[string][]string),
		Uploaded:     make(map[string][]byte),
		Attached:     make(map[string]map[string]any),
	}
}

// CollectionAPI

func (m *MockAssistantClient) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCollectionCalls++
	if m.ListCollectionsErr != nil {
		return nil, m.ListCollectionsErr
	}
	out := make([]domain.Collection, len(m.Collections))
	copy(out, m.Collections)
	return out, nil
}

func (m *MockAssistantClient) RetrieveCollection(ctx context.Context, id string) (*domain.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.Collections {
		if c.ID == id {
			col := c
			return &col, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockAssistantClient) CreateCollection(ctx context.Context, name string) (*domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	col := domain.Collection{ID: fmt.Sprintf("vs-%d", len(m.Collections)+1), Name: name, Status: "completed"}
	m.Collections = append(m.Collections, col)
	return &col, nil
}

func (m *MockAssistantClient) ListCollectionFiles(ctx context.Context, collectionID string) ([]driven.CollectionFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listFileCalls++
	if m.ListFilesErr != nil {
		return nil, m.ListFilesErr
	}
	return m.Files[collectionID], nil
}

func (m *MockAssistantClient) RetrieveFileAttributes(ctx context.Context, collectionID, fileID string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.AttributeErrs[fileID]; err != nil {
		return nil, err
	}
	return m.Attributes[fileID], nil
}

func (m *MockAssistantClient) RetrieveFilename(ctx context.Context, fileID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.FilenameErrs[fileID]; err != nil {
		return "", err
	}
	name, ok := m.Filenames[fileID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return name, nil
}

func (m *MockAssistantClient) UploadFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	m.fileSeq++
	id := fmt.Sprintf("file-%d", m.fileSeq)
	m.Uploaded[id] = data
	m.Filenames[id] = filename
	return id, nil
}

func (m *MockAssistantClient) AttachFile(ctx context.Context, collectionID, fileID string, attributes map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[collectionID] = append(m.Files[collectionID], driven.CollectionFile{FileID: fileID, Status: "completed"})
	m.Attached[fileID] = attributes
	if attributes != nil {
		m.Attributes[fileID] = attributes
	}
	return nil
}

func (m *MockAssistantClient) DetachFile(ctx context.Context, collectionID, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	files := m.Files[collectionID]
	out := files[:0]
	for _, f := range files {
		if f.FileID != fileID {
			out = append(out, f)
		}
	}
	m.Files[collectionID] = out
	return nil
}

// AssistantAPI

func (m *MockAssistantClient) CreateAssistant(ctx context.Context, spec driven.AssistantSpec) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateAssistantErr != nil {
		return "", m.CreateAssistantErr
	}
	m.assistantSeq++
	m.CreatedAssistants = append(m.CreatedAssistants, spec)
	return fmt.Sprintf("asst-%d", m.assistantSeq), nil
}

func (m *MockAssistantClient) DeleteAssistant(ctx context.Context, assistantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletedAssistants = append(m.DeletedAssistants, assistantID)
	return m.DeleteAssistantErr
}

func (m *MockAssistantClient) CreateThread(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateThreadErr != nil {
		return "", m.CreateThreadErr
	}
	m.threadSeq++
	return fmt.Sprintf("thread-%d", m.threadSeq), nil
}

func (m *MockAssistantClient) CreateUserMessage(ctx context.Context, threadID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateMessageErr != nil {
		return m.CreateMessageErr
	}
	m.UserMessages[threadID] = append(m.UserMessages[threadID], text)
	return nil
}

func (m *MockAssistantClient) CreateRun(ctx context.Context, threadID, assistantID string) (*domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateRunErr != nil {
		return nil, m.CreateRunErr
	}
	m.runSeq++
	return &domain.Run{
		ID:          fmt.Sprintf("run-%d", m.runSeq),
		ThreadID:    threadID,
		AssistantID: assistantID,
		Status:      domain.RunQueued,
	}, nil
}

// RetrieveRun walks the scripted RunStatuses sequence; once exhausted it
// keeps returning the last status.
func (m *MockAssistantClient) RetrieveRun(ctx context.Context, threadID, runID string) (*domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RetrieveRunErr != nil {
		return nil, m.RetrieveRunErr
	}
	status := domain.RunCompleted
	if len(m.RunStatuses) > 0 {
		idx := m.runPolls
		if idx >= len(m.RunStatuses) {
			idx = len(m.RunStatuses) - 1
		}
		status = m.RunStatuses[idx]
	}
	m.runPolls++
	return &domain.Run{ID: runID, ThreadID: threadID, Status: status}, nil
}

func (m *MockAssistantClient) ListMessages(ctx context.Context, threadID string) ([]domain.ThreadMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListMessagesErr != nil {
		return nil, m.ListMessagesErr
	}
	return m.Messages[threadID], nil
}

// Ping reports reachability the way the real client does, via the
// collection listing.
func (m *MockAssistantClient) Ping(ctx context.Context) error {
	_, err := m.ListCollections(ctx)
	return err
}

// Helper methods for testing

func (m *MockAssistantClient) ListCollectionCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCollectionCalls
}

func (m *MockAssistantClient) ListFileCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listFileCalls
}

func (m *MockAssistantClient) RunPolls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runPolls
}
