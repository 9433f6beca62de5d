package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent innerai configuration stored as config.toml
// in the .innerai/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Gateway     GatewayConfig     `toml:"gateway"`
	Persona     PersonaConfig     `toml:"persona"`
	API         APIConfig         `toml:"api"`
	Client      ClientConfig      `toml:"client"`
	Storage     StorageConfig     `toml:"storage"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// GatewayConfig holds gateway server and upstream provider settings.
type GatewayConfig struct {
	Listen   string `toml:"listen,omitempty"`
	Provider string `toml:"provider,omitempty"`
	Upstream string `toml:"upstream,omitempty"`
	Model    string `toml:"model,omitempty"`

	// Timeout bounds each upstream call, as a Go duration string (e.g. "60s").
	Timeout string `toml:"timeout,omitempty"`

	// RateLimit is the per-client request budget per minute. Zero disables it.
	RateLimit uint `toml:"rate_limit,omitempty"`

	// CORSOrigins is a comma separated list of allowed origins.
	CORSOrigins string `toml:"cors_origins,omitempty"`

	// APIKey is usually supplied via GEMINI_API_KEY or credentials.toml
	// rather than stored here.
	APIKey string `toml:"api_key,omitempty"`
}

// PersonaConfig tunes the coaching persona.
type PersonaConfig struct {
	Name     string `toml:"name,omitempty"`
	Language string `toml:"language,omitempty"`
}

// APIConfig holds journal API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// gateway (e.g. innerai chat, innerai reframe).
// Values are full URLs (scheme + host + port).
type ClientConfig struct {
	GatewayTarget string `toml:"gateway_target,omitempty"`
}

// StorageConfig holds exchange journal settings shared by the gateway and API.
// With neither set, the journal is kept in memory.
type StorageConfig struct {
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// EventStreamConfig holds exchange event publishing settings.
// With no brokers, events are not published.
type EventStreamConfig struct {
	KafkaBrokers string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string `toml:"kafka_topic,omitempty"`
}

// Brokers splits KafkaBrokers into addresses, dropping blanks.
func (e EventStreamConfig) Brokers() []string {
	var brokers []string
	for b := range strings.SplitSeq(e.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"gateway.listen": {
		get: func(c *Config) string { return c.Gateway.Listen },
		set: func(c *Config, v string) error { c.Gateway.Listen = NormalizeListen(v); return nil },
	},
	"gateway.provider": {
		get: func(c *Config) string { return c.Gateway.Provider },
		set: func(c *Config, v string) error { c.Gateway.Provider = v; return nil },
	},
	"gateway.upstream": {
		get: func(c *Config) string { return c.Gateway.Upstream },
		set: func(c *Config, v string) error { c.Gateway.Upstream = v; return nil },
	},
	"gateway.model": {
		get: func(c *Config) string { return c.Gateway.Model },
		set: func(c *Config, v string) error { c.Gateway.Model = v; return nil },
	},
	"gateway.timeout": {
		get: func(c *Config) string { return c.Gateway.Timeout },
		set: func(c *Config, v string) error {
			if _, err := ParseTimeout(v); err != nil {
				return fmt.Errorf("invalid value for gateway.timeout: %w", err)
			}
			c.Gateway.Timeout = v
			return nil
		},
	},
	"gateway.rate_limit": {
		get: func(c *Config) string {
			if c.Gateway.RateLimit == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Gateway.RateLimit), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for gateway.rate_limit: %w", err)
			}
			c.Gateway.RateLimit = uint(n)
			return nil
		},
	},
	"gateway.cors_origins": {
		get: func(c *Config) string { return c.Gateway.CORSOrigins },
		set: func(c *Config, v string) error { c.Gateway.CORSOrigins = v; return nil },
	},
	"persona.name": {
		get: func(c *Config) string { return c.Persona.Name },
		set: func(c *Config, v string) error { c.Persona.Name = v; return nil },
	},
	"persona.language": {
		get: func(c *Config) string { return c.Persona.Language },
		set: func(c *Config, v string) error { c.Persona.Language = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = NormalizeListen(v); return nil },
	},
	"client.gateway_target": {
		get: func(c *Config) string { return c.Client.GatewayTarget },
		set: func(c *Config, v string) error { c.Client.GatewayTarget = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"eventstream.kafka_brokers": {
		get: func(c *Config) string { return c.EventStream.KafkaBrokers },
		set: func(c *Config, v string) error { c.EventStream.KafkaBrokers = v; return nil },
	},
	"eventstream.kafka_topic": {
		get: func(c *Config) string { return c.EventStream.KafkaTopic },
		set: func(c *Config, v string) error { c.EventStream.KafkaTopic = v; return nil },
	},
}
