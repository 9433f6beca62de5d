package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/innerai/pkg/llm"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeExchangeRecorded is emitted after a gateway exchange is journaled.
	EventTypeExchangeRecorded = "innerai.exchange.recorded"
)

// ExchangeRecordedEvent is a transport-neutral event payload for a recorded exchange.
type ExchangeRecordedEvent struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	EventID       string       `json:"event_id"`
	EmittedAt     time.Time    `json:"emitted_at"`
	Source        EventSource  `json:"source"`
	Exchange      llm.Exchange `json:"exchange"`
}

// EventSource identifies the gateway instance that handled the exchange.
type EventSource struct {
	Service string `json:"service"`
	Model   string `json:"model,omitempty"`
}

// NewExchangeRecordedEvent wraps an exchange in a versioned event envelope.
func NewExchangeRecordedEvent(service string, exchange *llm.Exchange) *ExchangeRecordedEvent {
	event := &ExchangeRecordedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeExchangeRecorded,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Source:        EventSource{Service: service},
	}
	if exchange != nil {
		event.Exchange = *exchange
		event.Source.Model = exchange.Model
	}
	return event
}

// Key is the partition key for the event. Events for the same operation land
// on the same partition.
func (e *ExchangeRecordedEvent) Key() string {
	return e.Exchange.Operation
}
