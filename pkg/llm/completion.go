package llm

import "encoding/json"

// Completion is the provider-agnostic result of a single generation call.
type Completion struct {
	// Model that produced the completion, as reported by the provider.
	Model string `json:"model,omitempty"`

	// Text of the first part of the first candidate. Empty when any
	// segment of that path is missing from the provider response.
	Text string `json:"text"`

	// FinishReason as reported on the first candidate (e.g. "STOP", "SAFETY").
	FinishReason string `json:"finish_reason,omitempty"`

	Usage *Usage `json:"usage,omitempty"`

	// RawResponse preserves the provider payload for debugging.
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
}

// Usage contains token counts reported by the provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}
