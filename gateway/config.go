package gateway

import (
	"github.com/papercomputeco/innerai/pkg/eventstream"
	"github.com/papercomputeco/innerai/pkg/storage"
)

// DefaultService names the gateway in logs and published events.
const DefaultService = "innerai-gateway"

// Config is the gateway server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":3000")
	ListenAddr string

	// CORSOrigins is a comma separated list of allowed origins. Empty allows all.
	CORSOrigins string

	// RateLimit is the per-client request budget per minute. Zero disables
	// inbound rate limiting.
	RateLimit int

	// Service names this gateway in published events. Defaults to DefaultService.
	Service string

	// Driver is the optional exchange journal. If nil, exchanges are not recorded.
	Driver storage.Driver

	// Publisher is the optional event stream for recorded exchanges.
	// Only used when Driver is set.
	Publisher eventstream.Publisher

	// DisableMCP turns off the /mcp endpoint.
	DisableMCP bool
}
