// Package gemini implements the Provider interface for Google's Gemini
// generateContent REST API.
//
// Requests are authenticated with an API key passed as the "key" query
// parameter. The key is never logged.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/papercomputeco/innerai/pkg/llm"
	"github.com/papercomputeco/innerai/pkg/logger"
)

const (
	// DefaultBaseURL is the public Generative Language API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel is used when Config.Model is empty.
	DefaultModel = "gemini-2.0-flash"

	// DefaultTimeout bounds a single generateContent call.
	DefaultTimeout = 60 * time.Second

	// maxResponseBytes caps how much of an upstream body is read.
	maxResponseBytes = 4 << 20
)

// Config configures a Provider.
type Config struct {
	// BaseURL of the API (scheme + host), defaults to DefaultBaseURL.
	BaseURL string

	// Model name, e.g. "gemini-2.0-flash".
	Model string

	// APIKey is required.
	APIKey string

	// Timeout for each upstream call. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient overrides the client used for upstream calls.
	HTTPClient *http.Client

	// Logger receives debug output. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Provider calls the Gemini generateContent endpoint.
type Provider struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Gemini provider. Returns an error if no API key is configured.
func New(c Config) (*Provider, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, errors.New("gemini API key is required")
	}

	baseURL := strings.TrimRight(c.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gemini base URL %q: %w", c.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid gemini base URL %q: scheme and host are required", c.BaseURL)
	}

	model := c.Model
	if model == "" {
		model = DefaultModel
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	log := c.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Provider{
		baseURL:    baseURL,
		model:      model,
		apiKey:     c.APIKey,
		httpClient: httpClient,
		logger:     log,
	}, nil
}

// Name
func (p *Provider) Name() string {
	return "gemini"
}

// Model
func (p *Provider) Model() string {
	return p.model
}

// Generate sends contents to generateContent and extracts the first
// candidate's first text part. A well-formed response without that path
// yields a Completion with empty Text, not an error.
func (p *Provider) Generate(ctx context.Context, contents llm.Contents) (*llm.Completion, error) {
	body, err := encodeRequest(contents)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	p.logger.Debug("sending generateContent request",
		"model", p.model,
		"turn_count", len(contents),
	)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling gemini: %w", redactKey(err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading gemini response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &llm.UpstreamError{
			Provider:   p.Name(),
			StatusCode: httpResp.StatusCode,
			Body:       string(respBody),
		}
	}

	var resp generateContentResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decoding gemini response: %w", err)
	}

	completion := &llm.Completion{
		Model:       p.model,
		Text:        resp.firstText(),
		RawResponse: respBody,
	}
	if resp.ModelVersion != "" {
		completion.Model = resp.ModelVersion
	}
	if len(resp.Candidates) > 0 {
		completion.FinishReason = resp.Candidates[0].FinishReason
	}
	if resp.UsageMetadata != nil {
		completion.Usage = &llm.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	p.logger.Debug("received generateContent response",
		"model", completion.Model,
		"finish_reason", completion.FinishReason,
		"has_text", completion.Text != "",
	)

	return completion, nil
}

// encodeRequest writes the request body. HTML escaping is off so turn bytes
// reach the API unchanged apart from insignificant whitespace.
func encodeRequest(contents llm.Contents) (*bytes.Buffer, error) {
	if contents == nil {
		contents = llm.Contents{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generateContentRequest{Contents: contents}); err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	return &buf, nil
}

// endpoint builds {base}/v1beta/models/{model}:generateContent?key={apiKey}.
func (p *Provider) endpoint() string {
	q := url.Values{}
	q.Set("key", p.apiKey)
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?%s", p.baseURL, url.PathEscape(p.model), q.Encode())
}

// redactKey strips the API key from transport errors, which embed the full
// request URL.
func redactKey(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, parseErr := url.Parse(urlErr.URL); parseErr == nil {
			q := u.Query()
			if q.Has("key") {
				q.Set("key", "REDACTED")
				u.RawQuery = q.Encode()
				urlErr.URL = u.String()
			}
		}
	}
	return err
}
