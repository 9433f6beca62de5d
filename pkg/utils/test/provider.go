package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/innerai/pkg/llm"
)

// MockProvider is a test provider that returns a fixed completion text or
// error and records the contents of every call.
type MockProvider struct {
	Text string
	Err  error

	mu    sync.Mutex
	calls []llm.Contents
}

// NewMockProvider creates a provider that answers text.
func NewMockProvider(text string) *MockProvider {
	return &MockProvider{Text: text}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Model() string { return "mock-model" }

func (m *MockProvider) Generate(_ context.Context, contents llm.Contents) (*llm.Completion, error) {
	m.mu.Lock()
	m.calls = append(m.calls, contents)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return &llm.Completion{Model: "mock-model", Text: m.Text}, nil
}

// Calls returns the contents passed to each Generate call.
func (m *MockProvider) Calls() []llm.Contents {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.Contents(nil), m.calls...)
}
