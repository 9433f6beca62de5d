package llm

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ReframeResponse is the success body of POST /api/reframe.
type ReframeResponse struct {
	Reframe string `json:"reframe"`
}

// StoryResponse is the success body of POST /api/story.
type StoryResponse struct {
	Story string `json:"story"`
}

// ErrorResponse is the body returned for every failed request.
// Error is always a short, caller-safe message.
type ErrorResponse struct {
	Error string `json:"error"`
}
