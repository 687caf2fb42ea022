// Package stream talks to a Dexter backend: it creates runs and consumes
// the per-run server-sent event feed, coercing each frame into a typed
// event for the state fold.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPDoer abstracts HTTP clients used by the stream client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues run-creation and event-feed requests against one backend.
type Client struct {
	BaseURL string
	HTTP    HTTPDoer
}

// NewClient builds a client for the given base URL.
func NewClient(baseURL string, httpClient HTTPDoer) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    httpClient,
	}
}

// StartRequest carries the run-creation parameters.
type StartRequest struct {
	Query           string `json:"query"`
	MaxSteps        int    `json:"max_steps,omitempty"`
	MaxStepsPerTask int    `json:"max_steps_per_task,omitempty"`
}

// startResponse is the run-creation reply.
type startResponse struct {
	RunID string `json:"run_id"`
}

// StartRun submits a query and returns the backend-assigned run id. A
// non-success status is reported without inspecting the body.
func (c *Client) StartRun(ctx context.Context, req StartRequest) (string, error) {
	if strings.TrimSpace(req.Query) == "" {
		return "", fmt.Errorf("query is empty")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal run request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/run", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create run request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("run request failed with status %d", resp.StatusCode)
	}

	var decoded startResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode run response: %w", err)
	}
	if decoded.RunID == "" {
		return "", fmt.Errorf("run response missing run_id")
	}
	return decoded.RunID, nil
}

// drainClose discards and closes a response body.
func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
