package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRateLimited is matched (via errors.Is) by any provider failure caused by
// upstream throttling.
var ErrRateLimited = errors.New("provider rate limited")

// UpstreamError is returned when the provider answers with a non-2xx status.
// Body holds the provider's error payload for logging; it must never be
// forwarded to callers.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Provider, e.StatusCode)
}

// Is reports throttling responses as ErrRateLimited.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}
