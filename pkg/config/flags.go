package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --model
// on both "innerai serve" and "innerai serve gateway").
type Flag struct {
	// Name is the long flag name (e.g. "upstream").
	Name string

	// Shorthand is the one-letter short flag (e.g. "u"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "gateway.upstream").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagGatewayListen = "gateway-listen"
	FlagAPIListen     = "api-listen"
	FlagProvider      = "provider"
	FlagUpstream      = "upstream"
	FlagModel         = "model"
	FlagTimeout       = "timeout"
	FlagRateLimit     = "rate-limit"
	FlagCORSOrigins   = "cors-origins"
	FlagPersonaName   = "persona-name"
	FlagLanguage      = "language"
	FlagSQLite        = "sqlite"
	FlagPostgres      = "postgres"
	FlagKafkaBrokers  = "kafka-brokers"
	FlagKafkaTopic    = "kafka-topic"
	FlagGatewayTarget = "gateway-target"

	// Standalone subcommand variants use "listen" as the flag name
	// but bind to different viper keys depending on the service.
	FlagGatewayListenStandalone = "gateway-listen-standalone"
	FlagAPIListenStandalone     = "api-listen-standalone"
)

// Flags is the registry shared by every innerai command.
var Flags = FlagSet{
	FlagGatewayListen: {Name: "gateway-listen", ViperKey: "gateway.listen", Description: "Address for the gateway to listen on"},
	FlagAPIListen:     {Name: "api-listen", ViperKey: "api.listen", Description: "Address for the journal API to listen on"},
	FlagProvider:      {Name: "provider", Shorthand: "p", ViperKey: "gateway.provider", Description: "Upstream provider type (gemini)"},
	FlagUpstream:      {Name: "upstream", Shorthand: "u", ViperKey: "gateway.upstream", Description: "Upstream provider base URL"},
	FlagModel:         {Name: "model", Shorthand: "m", ViperKey: "gateway.model", Description: "Upstream model name"},
	FlagTimeout:       {Name: "timeout", ViperKey: "gateway.timeout", Description: "Upstream call timeout (e.g. 60s)"},
	FlagRateLimit:     {Name: "rate-limit", ViperKey: "gateway.rate_limit", Description: "Requests per minute per client on /api (0 disables)"},
	FlagCORSOrigins:   {Name: "cors-origins", ViperKey: "gateway.cors_origins", Description: "Comma separated allowed CORS origins"},
	FlagPersonaName:   {Name: "persona-name", ViperKey: "persona.name", Description: "Coach persona name"},
	FlagLanguage:      {Name: "language", ViperKey: "persona.language", Description: "Reply language code (e.g. en, ko)"},
	FlagSQLite:        {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to SQLite journal (default: in-memory)"},
	FlagPostgres:      {Name: "postgres", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL DSN for the journal"},
	FlagKafkaBrokers:  {Name: "kafka-brokers", ViperKey: "eventstream.kafka_brokers", Description: "Comma separated Kafka brokers for exchange events"},
	FlagKafkaTopic:    {Name: "kafka-topic", ViperKey: "eventstream.kafka_topic", Description: "Kafka topic for exchange events"},
	FlagGatewayTarget: {Name: "gateway-target", Shorthand: "g", ViperKey: "client.gateway_target", Description: "InnerAI gateway URL"},

	FlagGatewayListenStandalone: {Name: "listen", Shorthand: "l", ViperKey: "gateway.listen", Description: "Address for the gateway to listen on"},
	FlagAPIListenStandalone:     {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the journal API to listen on"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
