// Package inmemory provides a process-local storage driver.
package inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/papercomputeco/innerai/pkg/llm"
	"github.com/papercomputeco/innerai/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of exchanges
	mu sync.RWMutex

	// exchanges is keyed by exchange ID
	exchanges map[string]*llm.Exchange
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		exchanges: make(map[string]*llm.Exchange),
	}
}

// Put stores a copy of the exchange. Re-storing an existing ID is a no-op.
func (s *Driver) Put(_ context.Context, exchange *llm.Exchange) error {
	if exchange == nil {
		return errors.New("cannot store nil exchange")
	}
	if exchange.ID == "" {
		return errors.New("cannot store exchange without an ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.exchanges[exchange.ID]; ok {
		return nil
	}

	stored := *exchange
	s.exchanges[exchange.ID] = &stored
	return nil
}

// Get retrieves an exchange by its ID.
func (s *Driver) Get(_ context.Context, id string) (*llm.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exchange, ok := s.exchanges[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	result := *exchange
	return &result, nil
}

// List returns up to limit exchanges, newest first.
func (s *Driver) List(_ context.Context, limit int) ([]*llm.Exchange, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	s.mu.RLock()
	result := make([]*llm.Exchange, 0, len(s.exchanges))
	for _, exchange := range s.exchanges {
		copied := *exchange
		result = append(result, &copied)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].StartedAt.After(result[j].StartedAt)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Stats summarizes every stored exchange.
func (s *Driver) Stats(_ context.Context) (*storage.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &storage.Stats{ByOperation: make(map[string]int)}
	for _, exchange := range s.exchanges {
		stats.Total++
		if exchange.Failed() {
			stats.Failed++
		}
		stats.ByOperation[exchange.Operation]++
	}
	return stats, nil
}

// Count returns the number of stored exchanges.
func (s *Driver) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.exchanges)
}

// Close is a no-op for the in-memory driver.
func (s *Driver) Close() error {
	return nil
}
