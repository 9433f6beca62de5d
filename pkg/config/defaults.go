package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultProvider      = "gemini"
	defaultUpstream      = "https://generativelanguage.googleapis.com"
	defaultModel         = "gemini-2.0-flash"
	defaultTimeout       = "60s"
	defaultGatewayListen = ":3000"
	defaultAPIListen     = ":3001"
	defaultCORSOrigins   = "*"

	defaultPersonaName     = "InnerAI"
	defaultPersonaLanguage = "en"

	defaultClientGatewayTarget = "http://localhost:3000"

	defaultKafkaTopic = "innerai.exchanges"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Gateway: GatewayConfig{
			Listen:      defaultGatewayListen,
			Provider:    defaultProvider,
			Upstream:    defaultUpstream,
			Model:       defaultModel,
			Timeout:     defaultTimeout,
			CORSOrigins: defaultCORSOrigins,
		},
		Persona: PersonaConfig{
			Name:     defaultPersonaName,
			Language: defaultPersonaLanguage,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			GatewayTarget: defaultClientGatewayTarget,
		},
		EventStream: EventStreamConfig{
			KafkaTopic: defaultKafkaTopic,
		},
	}
}

// NormalizeListen turns a bare port such as "3000" (the form PORT takes)
// into a listen address ":3000". Other values are returned trimmed.
func NormalizeListen(listen string) string {
	listen = strings.TrimSpace(listen)
	if listen == "" || strings.Contains(listen, ":") {
		return listen
	}
	return ":" + listen
}

// ParseTimeout parses a gateway timeout. An empty value yields the default.
func ParseTimeout(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		s = defaultTimeout
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", s)
	}
	return d, nil
}
