// Package client is an HTTP client for a running innerai gateway.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/innerai/pkg/llm"
)

// defaultTimeout sits above the gateway's own upstream timeout so the
// gateway's error reaches the caller first.
const defaultTimeout = 90 * time.Second

// StatusError is returned when the gateway answers with a non-200 status.
type StatusError struct {
	StatusCode int

	// Message is the gateway's short error message, when it sent one.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Message)
}

// Is reports 429 responses as llm.ErrRateLimited.
func (e *StatusError) Is(target error) bool {
	return target == llm.ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}

// Client calls the gateway's /api endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the gateway at baseURL (e.g. http://localhost:3000).
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("gateway target is required")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Ping checks that the gateway is up.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pinging gateway: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}

// Chat sends the conversation so far and returns the coach's reply.
func (c *Client) Chat(ctx context.Context, messages []llm.Turn, language string) (string, error) {
	req, err := llm.NewChatRequest(messages, language)
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	var resp llm.ChatResponse
	if err := c.post(ctx, "/api/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// Reframe returns one positive reframe of a negative belief.
func (c *Client) Reframe(ctx context.Context, emotion, belief string) (string, error) {
	var resp llm.ReframeResponse
	err := c.post(ctx, "/api/reframe", llm.ReframeRequest{Emotion: emotion, Belief: belief}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Reframe, nil
}

// Story returns a short resilience story for an emotion and belief.
func (c *Client) Story(ctx context.Context, emotion, belief string) (string, error) {
	var resp llm.StoryResponse
	err := c.post(ctx, "/api/story", llm.StoryRequest{Emotion: emotion, Belief: belief}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Story, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request to gateway: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errResp llm.ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil {
			statusErr.Message = errResp.Error
		}
		return statusErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
