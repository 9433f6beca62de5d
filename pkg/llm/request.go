package llm

import "encoding/json"

// DefaultLanguage is used for chat replies when the caller does not name one.
const DefaultLanguage = "en"

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	// Conversation so far, oldest first. Forwarded to the provider as sent.
	Messages json.RawMessage `json:"messages,omitempty"`

	// Language code the reply must be written in (e.g. "en", "es").
	Language string `json:"language,omitempty"`
}

// NewChatRequest builds a chat body from typed turns.
func NewChatRequest(turns []Turn, language string) (ChatRequest, error) {
	if turns == nil {
		turns = []Turn{}
	}
	messages, err := json.Marshal(turns)
	if err != nil {
		return ChatRequest{}, err
	}
	return ChatRequest{Messages: messages, Language: language}, nil
}

// ReframeRequest is the body of POST /api/reframe.
type ReframeRequest struct {
	Emotion string `json:"emotion"`
	Belief  string `json:"belief"`
}

// StoryRequest is the body of POST /api/story.
type StoryRequest struct {
	Emotion string `json:"emotion"`
	Belief  string `json:"belief"`
}
