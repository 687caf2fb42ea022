package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Subscription is one open event-feed connection for a run.
type Subscription struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

// Subscribe opens the live event feed for a run id.
func (c *Client) Subscribe(ctx context.Context, runID string) (*Subscription, error) {
	endpoint := c.BaseURL + "/api/run/" + runID + "/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		drainClose(resp.Body)
		return nil, fmt.Errorf("event stream failed with status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Subscription{body: resp.Body, scanner: scanner}, nil
}

// Next blocks for the next message payload on the feed. It returns io.EOF
// when the server ends the stream and the transport error otherwise.
func (s *Subscription) Next() ([]byte, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		return []byte(data), nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Close tears down the connection.
func (s *Subscription) Close() error {
	return s.body.Close()
}
