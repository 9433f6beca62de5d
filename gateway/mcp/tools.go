package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/innerai/pkg/coach"
	"github.com/papercomputeco/innerai/pkg/llm"
)

var (
	reframeToolName    = "reframe"
	reframeDescription = "Turn a negative belief into one short, positive, CBT-style reframe of under 25 words."

	storyToolName    = "story"
	storyDescription = "Write a calming metaphorical story of about 150 words about resilience and growth for a given emotion and belief."

	chatToolName    = "chat"
	chatDescription = "Continue a supportive coaching conversation. Replies include a reframe, a resilience drill and an affirmation."
)

// BeliefInput is the input of the reframe and story tools.
type BeliefInput struct {
	Emotion string `json:"emotion" jsonschema:"the emotion the person is feeling, e.g. anxious"`
	Belief  string `json:"belief" jsonschema:"the negative belief behind the emotion, e.g. I always fail"`
}

// ReframeOutput is the output of the reframe tool.
type ReframeOutput struct {
	Reframe string `json:"reframe"`
}

// StoryOutput is the output of the story tool.
type StoryOutput struct {
	Story string `json:"story"`
}

// ChatMessage is one prior turn in a chat tool call.
type ChatMessage struct {
	Role string `json:"role" jsonschema:"who wrote the message: user or model"`
	Text string `json:"text" jsonschema:"the message text"`
}

// ChatInput is the input of the chat tool.
type ChatInput struct {
	Messages []ChatMessage `json:"messages" jsonschema:"the conversation so far, oldest first"`
	Language string        `json:"language,omitempty" jsonschema:"language code for the reply (default: en)"`
}

// ChatOutput is the output of the chat tool.
type ChatOutput struct {
	Reply string `json:"reply"`
}

// handleReframe processes a reframe request.
func (s *Server) handleReframe(ctx context.Context, _ *mcp.CallToolRequest, input BeliefInput) (*mcp.CallToolResult, ReframeOutput, error) {
	s.config.Logger.Debug("MCP reframe request")

	reframe, err := s.config.Coach.Reframe(ctx, input.Emotion, input.Belief)
	if err != nil {
		return s.toolError(llm.OperationReframe, err), ReframeOutput{}, nil
	}

	output := ReframeOutput{Reframe: reframe}
	return textResult(output), output, nil
}

// handleStory processes a story request.
func (s *Server) handleStory(ctx context.Context, _ *mcp.CallToolRequest, input BeliefInput) (*mcp.CallToolResult, StoryOutput, error) {
	s.config.Logger.Debug("MCP story request")

	story, err := s.config.Coach.Story(ctx, input.Emotion, input.Belief)
	if err != nil {
		return s.toolError(llm.OperationStory, err), StoryOutput{}, nil
	}

	output := StoryOutput{Story: story}
	return textResult(output), output, nil
}

// handleChat processes a chat request.
func (s *Server) handleChat(ctx context.Context, _ *mcp.CallToolRequest, input ChatInput) (*mcp.CallToolResult, ChatOutput, error) {
	s.config.Logger.Debug("MCP chat request", "message_count", len(input.Messages))

	turns := make([]llm.Turn, 0, len(input.Messages))
	for _, m := range input.Messages {
		role := m.Role
		if role == "" {
			role = llm.RoleUser
		}
		turns = append(turns, llm.NewTextTurn(role, m.Text))
	}

	messages, err := json.Marshal(turns)
	if err != nil {
		return s.toolError(llm.OperationChat, err), ChatOutput{}, nil
	}

	reply, err := s.config.Coach.Converse(ctx, messages, input.Language)
	if err != nil {
		return s.toolError(llm.OperationChat, err), ChatOutput{}, nil
	}

	output := ChatOutput{Reply: reply}
	return textResult(output), output, nil
}

// toolError reports an operation failure as a tool-level error so the calling
// model can see it. Validation messages are passed through; upstream detail is
// only logged.
func (s *Server) toolError(operation string, err error) *mcp.CallToolResult {
	s.config.Logger.Error("MCP tool failed", "tool", operation, "error", err)

	msg := fmt.Sprintf("Failed to generate %s.", operation)
	var validationErr *coach.ValidationError
	switch {
	case errors.As(err, &validationErr):
		msg = validationErr.Error()
	case errors.Is(err, llm.ErrRateLimited):
		msg = "The language model is rate limited. Try again later."
	}

	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

// textResult serializes structured output into a TextContent block alongside
// the structured content.
func textResult(output any) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize result: %v", err)},
			},
		}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}
}
