package llm

import (
	"encoding/json"
	"time"
)

// Operation names recorded on an Exchange.
const (
	OperationChat    = "chat"
	OperationReframe = "reframe"
	OperationStory   = "story"
)

// Error kinds recorded on a failed Exchange.
const (
	ErrorKindValidation  = "validation"
	ErrorKindRateLimited = "rate_limited"
	ErrorKindUpstream    = "upstream"
	ErrorKindEmptyResult = "empty_result"
)

// Exchange is the telemetry record of one completed gateway operation.
// It is written after the caller's response has been decided and is never
// read back on the request path.
type Exchange struct {
	ID        string `json:"id"`
	RequestID string `json:"request_id,omitempty"`

	// Operation is one of OperationChat, OperationReframe or OperationStory.
	Operation string `json:"operation"`

	// Model is the provider model that served the request.
	Model string `json:"model,omitempty"`

	// Language is the reply language for chat exchanges.
	Language string `json:"language,omitempty"`

	// Request is the inbound JSON body as received.
	Request json.RawMessage `json:"request,omitempty"`

	// Reply is the text returned to the caller, empty on failure.
	Reply string `json:"reply,omitempty"`

	// Status is the HTTP status returned to the caller.
	Status int `json:"status"`

	// ErrorKind is one of the ErrorKind constants, empty on success.
	ErrorKind string `json:"error_kind,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

// Failed reports whether the exchange ended in an error response.
func (e *Exchange) Failed() bool {
	return e.Status >= 400
}
