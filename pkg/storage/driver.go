// Package storage defines the exchange journal: an append-only record of
// completed gateway operations used for telemetry and inspection.
package storage

import (
	"context"

	"github.com/papercomputeco/innerai/pkg/llm"
)

// DefaultListLimit is applied by drivers when List is called with limit <= 0.
const DefaultListLimit = 50

// Driver defines the interface for persisting and retrieving exchanges in a
// storage backend.
type Driver interface {
	// Put stores an exchange. Storing an ID twice is a no-op.
	Put(ctx context.Context, exchange *llm.Exchange) error

	// Get retrieves an exchange by its ID.
	// Returns NotFoundError if it does not exist.
	Get(ctx context.Context, id string) (*llm.Exchange, error)

	// List returns up to limit exchanges, newest first.
	List(ctx context.Context, limit int) ([]*llm.Exchange, error)

	// Stats summarizes every stored exchange.
	Stats(ctx context.Context) (*Stats, error)

	// Close closes the store and releases any resources.
	Close() error
}

// Stats are aggregate counts across the journal.
type Stats struct {
	Total       int            `json:"total"`
	Failed      int            `json:"failed"`
	ByOperation map[string]int `json:"by_operation"`
}
