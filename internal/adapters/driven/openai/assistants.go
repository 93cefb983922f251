package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
)

// CreateAssistant creates a file-search assistant scoped to the spec's vector
// stores and returns its id.
func (c *Client) CreateAssistant(ctx context.Context, spec driven.AssistantSpec) (string, error) {
	type tool struct {
		Type string `json:"type"`
	}
	req := struct {
		Name          string `json:"name"`
		Instructions  string `json:"instructions"`
		Model         string `json:"model"`
		Tools         []tool `json:"tools"`
		ToolResources struct {
			FileSearch struct {
				VectorStoreIDs []string `json:"vector_store_ids"`
			} `json:"file_search"`
		} `json:"tool_resources"`
	}{
		Name:         spec.Name,
		Instructions: spec.Instructions,
		Model:        spec.Model,
		Tools:        []tool{{Type: "file_search"}},
	}
	req.ToolResources.FileSearch.VectorStoreIDs = spec.CollectionIDs

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/assistants", req, &resp); err != nil {
		return "", fmt.Errorf("failed to create assistant: %w", err)
	}
	return resp.ID, nil
}

// DeleteAssistant deletes an assistant.
func (c *Client) DeleteAssistant(ctx context.Context, assistantID string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/assistants/"+url.PathEscape(assistantID), nil, nil); err != nil {
		return fmt.Errorf("failed to delete assistant %s: %w", assistantID, err)
	}
	return nil
}

// CreateThread creates a fresh conversation thread and returns its id.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/threads", struct{}{}, &resp); err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	return resp.ID, nil
}

// CreateUserMessage appends a user message to a thread.
func (c *Client) CreateUserMessage(ctx context.Context, threadID, text string) error {
	req := struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{Role: "user", Content: text}

	path := fmt.Sprintf("/threads/%s/messages", url.PathEscape(threadID))
	if err := c.doJSON(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("failed to append message to thread %s: %w", threadID, err)
	}
	return nil
}

// runResponse is one run as the service reports it.
type runResponse struct {
	ID          string `json:"id"`
	ThreadID    string `json:"thread_id"`
	AssistantID string `json:"assistant_id"`
	Status      string `json:"status"`
}

func (r runResponse) toDomain() *domain.Run {
	return &domain.Run{
		ID:          r.ID,
		ThreadID:    r.ThreadID,
		AssistantID: r.AssistantID,
		Status:      domain.RunStatus(r.Status),
	}
}

// CreateRun starts an asynchronous run of the assistant on the thread.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (*domain.Run, error) {
	req := struct {
		AssistantID string `json:"assistant_id"`
	}{AssistantID: assistantID}

	path := fmt.Sprintf("/threads/%s/runs", url.PathEscape(threadID))
	var resp runResponse
	if err := c.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create run on thread %s: %w", threadID, err)
	}
	return resp.toDomain(), nil
}

// RetrieveRun fetches the current status of a run.
func (c *Client) RetrieveRun(ctx context.Context, threadID, runID string) (*domain.Run, error) {
	path := fmt.Sprintf("/threads/%s/runs/%s", url.PathEscape(threadID), url.PathEscape(runID))
	var resp runResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to retrieve run %s: %w", runID, err)
	}
	return resp.toDomain(), nil
}

// threadMessage is one message as the service reports it. Only text content
// blocks are mapped; other block types are skipped.
type threadMessage struct {
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text struct {
			Value       string `json:"value"`
			Annotations []struct {
				Type         string `json:"type"`
				FileCitation struct {
					FileID string `json:"file_id"`
				} `json:"file_citation"`
				FilePath struct {
					FileID string `json:"file_id"`
				} `json:"file_path"`
			} `json:"annotations"`
		} `json:"text"`
	} `json:"content"`
}

func (m threadMessage) toDomain() domain.ThreadMessage {
	out := domain.ThreadMessage{Role: domain.TurnRole(m.Role)}
	for _, block := range m.Content {
		if block.Type != "text" {
			continue
		}
		tb := domain.TextBlock{Value: block.Text.Value}
		for _, ann := range block.Text.Annotations {
			tb.Annotations = append(tb.Annotations, domain.Annotation{
				FileCitationID: ann.FileCitation.FileID,
				FilePathID:     ann.FilePath.FileID,
			})
		}
		out.Text = append(out.Text, tb)
	}
	return out
}

// ListMessages lists the messages of a thread, newest first.
func (c *Client) ListMessages(ctx context.Context, threadID string) ([]domain.ThreadMessage, error) {
	path := fmt.Sprintf("/threads/%s/messages?order=desc&limit=%d", url.PathEscape(threadID), listLimit)

	var page listResponse[threadMessage]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, fmt.Errorf("failed to list messages of thread %s: %w", threadID, err)
	}
	out := make([]domain.ThreadMessage, 0, len(page.Data))
	for _, m := range page.Data {
		out = append(out, m.toDomain())
	}
	return out, nil
}
