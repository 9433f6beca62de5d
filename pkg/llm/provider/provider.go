package provider

import (
	"context"

	"github.com/papercomputeco/innerai/pkg/llm"
)

// Provider is a generative-language backend that turns a sequence of
// conversation turns into a single completion.
//
// Implementations send each element of contents as-is; caller turns may
// carry parts the gateway does not understand.
type Provider interface {
	// Name returns the canonical provider name (e.g., "gemini").
	Name() string

	// Model returns the model identifier requests are sent to.
	Model() string

	// Generate issues exactly one upstream call for contents.
	// Throttling errors match llm.ErrRateLimited; other non-2xx
	// responses are returned as *llm.UpstreamError.
	Generate(ctx context.Context, contents llm.Contents) (*llm.Completion, error)
}
