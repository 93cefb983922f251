package openai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
)

// listLimit is the page size requested from listing endpoints.
const listLimit = 100

// vectorStore is one collection as the service reports it.
type vectorStore struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	FileCounts struct {
		Completed  int `json:"completed"`
		InProgress int `json:"in_progress"`
		Failed     int `json:"failed"`
		Total      int `json:"total"`
	} `json:"file_counts"`
}

func (v vectorStore) toDomain() domain.Collection {
	return domain.Collection{
		ID:        v.ID,
		Name:      v.Name,
		Status:    v.Status,
		FileCount: v.FileCounts.Total,
	}
}

// listResponse is the common paginated list envelope.
type listResponse[T any] struct {
	Data    []T    `json:"data"`
	HasMore bool   `json:"has_more"`
	LastID  string `json:"last_id"`
}

// ListCollections lists all vector stores, following pagination.
func (c *Client) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	var out []domain.Collection
	after := ""
	for {
		path := fmt.Sprintf("/vector_stores?limit=%d", listLimit)
		if after != "" {
			path += "&after=" + url.QueryEscape(after)
		}

		var page listResponse[vectorStore]
		if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, fmt.Errorf("failed to list vector stores: %w", err)
		}
		for _, v := range page.Data {
			out = append(out, v.toDomain())
		}
		if !page.HasMore || page.LastID == "" {
			return out, nil
		}
		after = page.LastID
	}
}

// RetrieveCollection retrieves one vector store by id.
func (c *Client) RetrieveCollection(ctx context.Context, id string) (*domain.Collection, error) {
	var v vectorStore
	if err := c.doJSON(ctx, http.MethodGet, "/vector_stores/"+url.PathEscape(id), nil, &v); err != nil {
		return nil, fmt.Errorf("failed to retrieve vector store %s: %w", id, err)
	}
	col := v.toDomain()
	return &col, nil
}

// CreateCollection creates a new named vector store.
func (c *Client) CreateCollection(ctx context.Context, name string) (*domain.Collection, error) {
	req := struct {
		Name string `json:"name"`
	}{Name: name}

	var v vectorStore
	if err := c.doJSON(ctx, http.MethodPost, "/vector_stores", req, &v); err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}
	col := v.toDomain()
	return &col, nil
}

// vectorStoreFile is one file attachment of a vector store.
type vectorStoreFile struct {
	ID         string         `json:"id"`
	Status     string         `json:"status"`
	Attributes map[string]any `json:"attributes"`
}

// ListCollectionFiles lists the file attachments of a vector store, following
// pagination.
func (c *Client) ListCollectionFiles(ctx context.Context, collectionID string) ([]driven.CollectionFile, error) {
	var out []driven.CollectionFile
	after := ""
	for {
		path := fmt.Sprintf("/vector_stores/%s/files?limit=%d", url.PathEscape(collectionID), listLimit)
		if after != "" {
			path += "&after=" + url.QueryEscape(after)
		}

		var page listResponse[vectorStoreFile]
		if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, fmt.Errorf("failed to list files of vector store %s: %w", collectionID, err)
		}
		for _, f := range page.Data {
			out = append(out, driven.CollectionFile{FileID: f.ID, Status: f.Status})
		}
		if !page.HasMore || page.LastID == "" {
			return out, nil
		}
		after = page.LastID
	}
}

// RetrieveFileAttributes retrieves the raw attribute bag of an attachment.
func (c *Client) RetrieveFileAttributes(ctx context.Context, collectionID, fileID string) (map[string]any, error) {
	path := fmt.Sprintf("/vector_stores/%s/files/%s", url.PathEscape(collectionID), url.PathEscape(fileID))

	var f vectorStoreFile
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &f); err != nil {
		return nil, fmt.Errorf("failed to retrieve attributes of file %s: %w", fileID, err)
	}
	if f.Attributes == nil {
		return map[string]any{}, nil
	}
	return f.Attributes, nil
}

// RetrieveFilename resolves a file id to its original filename.
func (c *Client) RetrieveFilename(ctx context.Context, fileID string) (string, error) {
	var f struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/files/"+url.PathEscape(fileID), nil, &f); err != nil {
		return "", fmt.Errorf("failed to retrieve file %s: %w", fileID, err)
	}
	return f.Filename, nil
}

// UploadFile uploads file content with the assistants purpose and returns the
// new file id.
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("purpose", "assistants"); err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("failed to read upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var f struct {
		ID string `json:"id"`
	}
	if err := c.send(req, &f); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}
	return f.ID, nil
}

// AttachFile attaches an uploaded file to a vector store, optionally with an
// attribute bag.
func (c *Client) AttachFile(ctx context.Context, collectionID, fileID string, attributes map[string]any) error {
	req := struct {
		FileID     string         `json:"file_id"`
		Attributes map[string]any `json:"attributes,omitempty"`
	}{FileID: fileID, Attributes: attributes}

	path := fmt.Sprintf("/vector_stores/%s/files", url.PathEscape(collectionID))
	if err := c.doJSON(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("failed to attach file %s: %w", fileID, err)
	}
	return nil
}

// DetachFile removes a file attachment from a vector store.
func (c *Client) DetachFile(ctx context.Context, collectionID, fileID string) error {
	path := fmt.Sprintf("/vector_stores/%s/files/%s", url.PathEscape(collectionID), url.PathEscape(fileID))
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to detach file %s: %w", fileID, err)
	}
	return nil
}
