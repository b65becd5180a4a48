// Package precheck calls the external login pre-check service that must
// answer before credentials are examined. The circuit breaker in front of
// login counts this call's failures.
package precheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the dependent external check invoked before credential
// verification.
type Client interface {
	Check(ctx context.Context, username string) error
}

// HTTPClient POSTs the username to the pre-check endpoint. The underlying
// http.Client carries a hard timeout so a stalled dependency cannot pin
// request-handling goroutines.
type HTTPClient struct {
	url        string
	httpClient *http.Client
}

func NewHTTPClient(rawURL string, timeout time.Duration) (*HTTPClient, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("empty pre-check url")
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &HTTPClient{
		url: rawURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *HTTPClient) Check(ctx context.Context, username string) error {
	payload, err := json.Marshal(map[string]string{"username": username})
	if err != nil {
		return fmt.Errorf("encode pre-check payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build pre-check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pre-check call: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("pre-check rejected with status %d", resp.StatusCode)
	}
	return nil
}

// Noop is used when no pre-check endpoint is configured.
type Noop struct{}

func (Noop) Check(context.Context, string) error {
	return nil
}
