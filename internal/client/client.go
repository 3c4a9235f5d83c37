package client

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

// Request describes one call against the lookup service.
type Request interface {
	Method() string
	Path() string
	// Body is encoded as JSON; nil sends no body.
	Body() any
}

// APIClient performs requests and decodes responses into out. A *string out
// receives the raw body.
type APIClient interface {
	Perform(ctx context.Context, req Request, out any) error
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.DefaultBaseURL(), "/"),
	}, nil
}

func (c *Client) Perform(ctx context.Context, req Request, out any) error {
	var body io.Reader
	if payload := req.Body(); payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("cardbrand client: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), c.baseURL+req.Path(), body)
	if err != nil {
		return fmt.Errorf("cardbrand client: create HTTP request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.ClientKey)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("cardbrand client: send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("cardbrand client: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       respBody,
			Headers:    resp.Header,
		}
	}

	switch v := out.(type) {
	case nil:
		return nil
	case *string:
		*v = string(respBody)
		return nil
	default:
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("cardbrand client: decode response (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil
	}
}
