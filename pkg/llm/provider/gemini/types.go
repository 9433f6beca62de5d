package gemini

import "github.com/papercomputeco/innerai/pkg/llm"

// generateContentRequest is the generateContent request body.
// Contents are sent exactly as assembled by the caller.
type generateContentRequest struct {
	Contents llm.Contents `json:"contents"`
}

// generateContentResponse is the subset of the generateContent response the
// gateway reads. Every level is a pointer or slice so missing segments can be
// told apart from empty ones.
type generateContentResponse struct {
	Candidates    []candidate    `json:"candidates"`
	UsageMetadata *usageMetadata `json:"usageMetadata,omitempty"`
	ModelVersion  string         `json:"modelVersion,omitempty"`
}

type candidate struct {
	Content      *llm.Turn `json:"content,omitempty"`
	FinishReason string    `json:"finishReason,omitempty"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// firstText walks candidates[0].content.parts[0].text, returning "" when any
// segment is absent.
func (r *generateContentResponse) firstText() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	content := r.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return ""
	}
	return content.Parts[0].Text
}
