package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/innerai/pkg/eventstream"
)

// MockPublisher is a test eventstream publisher that records published events.
type MockPublisher struct {
	// FailPublish causes PublishExchange to return an error.
	FailPublish bool

	mu     sync.Mutex
	events []*eventstream.ExchangeRecordedEvent
	closed bool
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishExchange(_ context.Context, event *eventstream.ExchangeRecordedEvent) error {
	if event == nil {
		return eventstream.ErrNilExchangeEvent
	}
	if m.FailPublish {
		return errors.New("mock publish failure")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns the published events.
func (m *MockPublisher) Events() []*eventstream.ExchangeRecordedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*eventstream.ExchangeRecordedEvent(nil), m.events...)
}

// Closed reports whether Close was called.
func (m *MockPublisher) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
