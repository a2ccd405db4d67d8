package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/ingest"
)

// Client sends Alpha Progression exports to the LiftLog server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client

	// backoff is the delay before the first retry; it doubles per attempt.
	backoff time.Duration
}

// NewClient creates a new HTTP client for the LiftLog server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// SendAlphaCSV POSTs one export to the server's Alpha ingest endpoint.
// Retries up to 3 times with exponential backoff on network errors and
// server errors. A 4xx response fails immediately.
func (c *Client) SendAlphaCSV(ctx context.Context, data []byte) (*ingest.Result, error) {
	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/ingest/alpha", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "text/csv")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var result ingest.Result
			if err := json.Unmarshal(body, &result); err != nil {
				return nil, fmt.Errorf("decoding ingest result: %w", err)
			}
			return &result, nil
		case resp.StatusCode < http.StatusInternalServerError:
			return nil, fmt.Errorf("ingest rejected (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
		}
		lastErr = fmt.Errorf("ingest failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}
