package services

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/innerai/pkg/config"
)

// GatewayFlags are the registry keys every gateway-running command accepts,
// besides its listen flag.
var GatewayFlags = []string{
	config.FlagProvider,
	config.FlagUpstream,
	config.FlagModel,
	config.FlagTimeout,
	config.FlagRateLimit,
	config.FlagCORSOrigins,
	config.FlagPersonaName,
	config.FlagLanguage,
}

// StorageFlags select the exchange journal.
var StorageFlags = []string{
	config.FlagSQLite,
	config.FlagPostgres,
}

// EventStreamFlags configure exchange event publishing.
var EventStreamFlags = []string{
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
}

var uintFlags = map[string]bool{
	config.FlagRateLimit: true,
}

// RegisterFlags adds the registry flags named by keys to cmd. Values are read
// back through viper once bound, so the flag targets are not kept.
func RegisterFlags(cmd *cobra.Command, keys ...[]string) {
	for _, group := range keys {
		for _, key := range group {
			if uintFlags[key] {
				config.AddUintFlag(cmd, config.Flags, key, new(uint))
				continue
			}
			config.AddStringFlag(cmd, config.Flags, key, new(string))
		}
	}
}

// LoadConfig resolves flag > env > config.toml > default for the registry
// flags named by keys.
func LoadConfig(cmd *cobra.Command, keys ...[]string) (*viper.Viper, *config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	for _, group := range keys {
		config.BindRegisteredFlags(v, cmd, config.Flags, group)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	return v, cfg, nil
}
