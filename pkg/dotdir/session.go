package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/papercomputeco/innerai/pkg/llm"
)

const (
	sessionFile = "session.json"
)

// SessionState is the saved "innerai chat" conversation, resumed on the next
// run until it is cleared.
type SessionState struct {
	// Language is the reply language the session was started with.
	Language string `json:"language,omitempty"`

	// Turns is the conversation history in chronological order (oldest first).
	Turns []llm.Turn `json:"turns"`
}

// LoadSession loads the session state from a target .innerai/session.json.
// Returns nil, nil if no session exists (new conversation).
// If overrideDir is non-empty, it is used instead of the default ~/.innerai/ location.
func (m *Manager) LoadSession(overrideDir string) (*SessionState, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, sessionFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	state := &SessionState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing session: %w", err)
	}

	return state, nil
}

// SaveSession persists the session state to a target .innerai/session.json.
func (m *Manager) SaveSession(state *SessionState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil session state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}

	// Sessions hold personal conversation text.
	path := filepath.Join(dir, sessionFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}

	return nil
}

// ClearSession removes the session file so the next chat starts fresh.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearSession(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, sessionFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing session: %w", err)
	}

	return nil
}
