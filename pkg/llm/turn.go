package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	// RoleUser marks a turn written by the person being coached.
	RoleUser = "user"

	// RoleModel marks a turn written by the provider.
	RoleModel = "model"
)

// Turn is a single conversation turn in the provider's wire shape:
// {"role": "user", "parts": [{"text": "..."}]}.
//
// Turn is used for turns the gateway writes itself and for reading replies.
// Caller turns travel as Contents and are never decoded into a Turn.
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is one text piece of a turn.
type Part struct {
	Text string `json:"text"`
}

// NewTextTurn creates a single-part text turn with the given role.
func NewTextTurn(role, text string) Turn {
	return Turn{
		Role:  role,
		Parts: []Part{{Text: text}},
	}
}

// GetText returns the concatenated text of all parts in the turn.
func (t *Turn) GetText() string {
	var result string
	for _, part := range t.Parts {
		result += part.Text
	}
	return result
}

// Contents is the ordered list of turns sent to a provider. Each element is
// the exact JSON of one turn.
type Contents []json.RawMessage

// TextContents encodes turns built by the gateway.
func TextContents(turns ...Turn) (Contents, error) {
	contents := make(Contents, 0, len(turns))
	for _, turn := range turns {
		raw, err := json.Marshal(turn)
		if err != nil {
			return nil, fmt.Errorf("encoding turn: %w", err)
		}
		contents = append(contents, raw)
	}
	return contents, nil
}

// SpliceMessages splits a caller's "messages" value into Contents without
// interpreting the turns. An array contributes its elements in order, an
// absent or null value contributes nothing, and any other value is carried
// as a single element.
func SpliceMessages(messages json.RawMessage) (Contents, error) {
	trimmed := bytes.TrimSpace(messages)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] != '[' {
		return Contents{trimmed}, nil
	}

	var contents Contents
	if err := json.Unmarshal(trimmed, &contents); err != nil {
		return nil, fmt.Errorf("splitting messages: %w", err)
	}
	return contents, nil
}
