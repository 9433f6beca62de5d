// Package coach implements the prompted completion gateway: it wraps caller
// input in the coaching persona's prompts, makes one provider call per
// operation, and extracts the reply text.
//
// A Coach holds no per-request state. The only mutable field is the persona,
// which is replaced wholesale and read once per operation.
package coach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/papercomputeco/innerai/pkg/llm"
	"github.com/papercomputeco/innerai/pkg/llm/provider"
	"github.com/papercomputeco/innerai/pkg/logger"
	"github.com/papercomputeco/innerai/pkg/utils"
)

const (
	// FallbackReply is returned by Converse when the provider response has no text.
	FallbackReply = "No reply generated."

	// FallbackReframe is returned by Reframe when the provider response has no text.
	FallbackReframe = "No reframe available"

	maxLoggedBody = 2048
)

// Config is the configuration for a Coach.
type Config struct {
	// Provider performs the upstream generation call. Required.
	Provider provider.Provider

	// Persona tunes the prompts. Zero fields take defaults.
	Persona Persona

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Coach builds prompts and extracts completions for the chat, reframe and
// story operations.
type Coach struct {
	provider provider.Provider
	persona  atomic.Pointer[Persona]
	logger   *slog.Logger
}

// New creates a Coach.
func New(c Config) (*Coach, error) {
	if c.Provider == nil {
		return nil, errors.New("provider is required")
	}

	log := c.Logger
	if log == nil {
		log = logger.Nop()
	}

	co := &Coach{
		provider: c.Provider,
		logger:   log,
	}
	co.SetPersona(c.Persona)

	return co, nil
}

// Persona returns the persona currently in use.
func (c *Coach) Persona() Persona {
	return *c.persona.Load()
}

// SetPersona replaces the persona used by subsequent operations.
// Operations already in flight keep the persona they started with.
func (c *Coach) SetPersona(p Persona) {
	p = p.Normalize()
	c.persona.Store(&p)
}

// Model reports the provider model used for generation.
func (c *Coach) Model() string {
	return c.provider.Model()
}

// ChatContents assembles the provider payload for a chat: the persona
// instruction as a leading user turn, then the caller's messages spliced in
// unchanged and in order.
func (c *Coach) ChatContents(messages json.RawMessage, language string) (llm.Contents, error) {
	if strings.TrimSpace(language) == "" {
		language = c.Persona().Language
	}

	instruction, err := c.Persona().ChatInstruction(language)
	if err != nil {
		return nil, err
	}

	turns, err := llm.SpliceMessages(messages)
	if err != nil {
		return nil, err
	}

	contents, err := llm.TextContents(llm.NewTextTurn(llm.RoleUser, instruction))
	if err != nil {
		return nil, err
	}
	return append(contents, turns...), nil
}

// Converse continues a conversation in the coaching persona. messages is
// the caller's turn array as received.
// Returns FallbackReply when the provider yields no text.
func (c *Coach) Converse(ctx context.Context, messages json.RawMessage, language string) (string, error) {
	contents, err := c.ChatContents(messages, language)
	if err != nil {
		return "", err
	}

	completion, err := c.generate(ctx, llm.OperationChat, contents)
	if err != nil {
		return "", err
	}

	if completion.Text == "" {
		c.logger.Warn("no reply text in provider response, using fallback",
			"operation", llm.OperationChat,
			"finish_reason", completion.FinishReason,
		)
		return FallbackReply, nil
	}

	return completion.Text, nil
}

// Reframe produces one short positive restatement of a negative belief.
// Both inputs are required. Returns FallbackReframe when the provider yields
// no text.
func (c *Coach) Reframe(ctx context.Context, emotion, belief string) (string, error) {
	if err := requireFields([2]string{"emotion", emotion}, [2]string{"belief", belief}); err != nil {
		return "", err
	}

	prompt, err := c.Persona().ReframePrompt(strings.TrimSpace(emotion), strings.TrimSpace(belief))
	if err != nil {
		return "", err
	}

	completion, err := c.generatePrompt(ctx, llm.OperationReframe, prompt)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(completion.Text)
	if text == "" {
		c.logger.Warn("no reframe text in provider response, using fallback",
			"operation", llm.OperationReframe,
			"finish_reason", completion.FinishReason,
		)
		return FallbackReframe, nil
	}

	return text, nil
}

// Story produces a short metaphorical story about resilience.
// Both inputs are required. An empty result is an error (ErrEmptyResult).
func (c *Coach) Story(ctx context.Context, emotion, belief string) (string, error) {
	if err := requireFields([2]string{"emotion", emotion}, [2]string{"belief", belief}); err != nil {
		return "", err
	}

	prompt, err := c.Persona().StoryPrompt(strings.TrimSpace(emotion), strings.TrimSpace(belief))
	if err != nil {
		return "", err
	}

	completion, err := c.generatePrompt(ctx, llm.OperationStory, prompt)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(completion.Text)
	if text == "" {
		return "", fmt.Errorf("%s: %w (finish reason %q)", llm.OperationStory, ErrEmptyResult, completion.FinishReason)
	}

	return text, nil
}

// generatePrompt sends prompt as a single user turn.
func (c *Coach) generatePrompt(ctx context.Context, operation, prompt string) (*llm.Completion, error) {
	contents, err := llm.TextContents(llm.NewTextTurn(llm.RoleUser, prompt))
	if err != nil {
		return nil, err
	}
	return c.generate(ctx, operation, contents)
}

func (c *Coach) generate(ctx context.Context, operation string, contents llm.Contents) (*llm.Completion, error) {
	completion, err := c.provider.Generate(ctx, contents)
	if err != nil {
		attrs := []any{
			"operation", operation,
			"provider", c.provider.Name(),
			"error", err,
		}
		var upstreamErr *llm.UpstreamError
		if errors.As(err, &upstreamErr) {
			attrs = append(attrs, "status", upstreamErr.StatusCode, "upstream_body", utils.Truncate(upstreamErr.Body, maxLoggedBody))
		}
		c.logger.Error("provider call failed", attrs...)
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return completion, nil
}
