package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/papercomputeco/innerai/pkg/dotdir"
)

// EnvPrefix is prepended to every environment variable override,
// e.g. INNERAI_GATEWAY_MODEL for gateway.model.
const EnvPrefix = "INNERAI"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the INNERAI_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (INNERAI_GATEWAY_LISTEN, PORT, GEMINI_API_KEY, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional deployment variables, consulted after the prefixed ones.
	_ = v.BindEnv("gateway.listen", EnvPrefix+"_GATEWAY_LISTEN", "PORT")
	_ = v.BindEnv("gateway.api_key", EnvPrefix+"_GATEWAY_API_KEY", "GEMINI_API_KEY")

	return v, nil
}

// Load resolves the full precedence chain held by v into a Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	})
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Gateway.Listen = NormalizeListen(cfg.Gateway.Listen)
	cfg.API.Listen = NormalizeListen(cfg.API.Listen)

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}
	if _, err := ParseTimeout(cfg.Gateway.Timeout); err != nil {
		return nil, fmt.Errorf("invalid gateway.timeout: %w", err)
	}

	return cfg, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("gateway.listen", d.Gateway.Listen)
	v.SetDefault("gateway.provider", d.Gateway.Provider)
	v.SetDefault("gateway.upstream", d.Gateway.Upstream)
	v.SetDefault("gateway.model", d.Gateway.Model)
	v.SetDefault("gateway.timeout", d.Gateway.Timeout)
	v.SetDefault("gateway.rate_limit", d.Gateway.RateLimit)
	v.SetDefault("gateway.cors_origins", d.Gateway.CORSOrigins)
	v.SetDefault("gateway.api_key", d.Gateway.APIKey)

	v.SetDefault("persona.name", d.Persona.Name)
	v.SetDefault("persona.language", d.Persona.Language)

	v.SetDefault("api.listen", d.API.Listen)

	v.SetDefault("client.gateway_target", d.Client.GatewayTarget)

	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	v.SetDefault("eventstream.kafka_brokers", d.EventStream.KafkaBrokers)
	v.SetDefault("eventstream.kafka_topic", d.EventStream.KafkaTopic)
}
