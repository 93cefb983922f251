package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/kbchat-core/internal/core/domain"
	"github.com/custodia-labs/kbchat-core/internal/core/ports/driven"
)

// Ensure Client implements AssistantClient
var _ driven.AssistantClient = (*Client)(nil)

// Client talks to the hosted retrieval-assistant service over its REST API.
// Collections map to vector stores; conversations run through assistants,
// threads and asynchronous runs.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a new Client for the hosted service.
func NewClient(apiKey, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Ping verifies connectivity and credentials with a cheap listing call.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListCollections(ctx)
	return err
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// apiError is the error envelope returned by the service.
type apiError struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// doJSON sends one JSON request and decodes the response into out (which may
// be nil for calls whose body is discarded). reqBody nil means no body.
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out any) error {
	var bodyReader io.Reader
	if reqBody != nil {
		body, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// send executes a prepared request with auth headers and decodes the
// response.
func (c *Client) send(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope apiError
	if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error != nil {
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, envelope.Error.Message)
		}
		return fmt.Errorf("OpenAI API error: %s (type: %s, code: %s)",
			envelope.Error.Message, envelope.Error.Type, envelope.Error.Code)
	}

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenAI API returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
