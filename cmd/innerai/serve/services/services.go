// Package services builds the long running pieces shared by the serve
// commands: logging, the exchange journal, the event stream and the coach.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/papercomputeco/innerai/gateway"
	"github.com/papercomputeco/innerai/pkg/coach"
	"github.com/papercomputeco/innerai/pkg/config"
	"github.com/papercomputeco/innerai/pkg/credentials"
	"github.com/papercomputeco/innerai/pkg/eventstream"
	"github.com/papercomputeco/innerai/pkg/eventstream/kafka"
	"github.com/papercomputeco/innerai/pkg/eventstream/nop"
	"github.com/papercomputeco/innerai/pkg/llm/provider"
	"github.com/papercomputeco/innerai/pkg/logger"
	"github.com/papercomputeco/innerai/pkg/storage"
	"github.com/papercomputeco/innerai/pkg/storage/inmemory"
	"github.com/papercomputeco/innerai/pkg/storage/postgres"
	"github.com/papercomputeco/innerai/pkg/storage/sqlite"
)

// ErrMissingAPIKey is returned when no provider key is found in the
// environment, config or credentials.toml.
var ErrMissingAPIKey = errors.New(`no Gemini API key found: set GEMINI_API_KEY or run "innerai auth gemini"`)

// NewLogger returns the service logger. Output is human readable on a
// terminal and JSON otherwise. When logFile is set, JSON records are also
// appended to it. The returned func closes the file.
func NewLogger(debug bool, logFile string) (*slog.Logger, func(), error) {
	svc, err := logger.NewService(logger.ServiceConfig{
		Debug:   debug,
		Console: os.Stdout,
		Pretty:  term.IsTerminal(int(os.Stdout.Fd())),
		LogFile: logFile,
	})
	if err != nil {
		return nil, nil, err
	}
	return svc.Logger, func() { _ = svc.Close() }, nil
}

// NewStorageDriver opens the exchange journal. Postgres wins over SQLite;
// with neither configured the journal lives in memory.
func NewStorageDriver(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (storage.Driver, error) {
	switch {
	case cfg.PostgresDSN != "":
		driver, err := postgres.NewDriver(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL journal: %w", err)
		}
		log.Info("using PostgreSQL journal")
		return driver, nil

	case cfg.SQLitePath != "":
		driver, err := sqlite.NewDriver(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite journal: %w", err)
		}
		log.Info("using SQLite journal", "path", cfg.SQLitePath)
		return driver, nil

	default:
		log.Info("using in-memory journal")
		return inmemory.NewDriver(), nil
	}
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// no-op publisher otherwise.
func NewPublisher(cfg config.EventStreamConfig, log *slog.Logger) (eventstream.Publisher, error) {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return nop.NewPublisher(), nil
	}

	pub, err := kafka.NewPublisher(kafka.Config{
		Brokers: brokers,
		Topic:   cfg.KafkaTopic,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	log.Info("publishing exchange events to kafka",
		"brokers", brokers,
		"topic", cfg.KafkaTopic,
	)
	return pub, nil
}

// ResolveAPIKey returns fromEnv when set, otherwise the key stored for the
// provider in credentials.toml.
func ResolveAPIKey(configDir, providerType, fromEnv string) (string, error) {
	if fromEnv != "" {
		return fromEnv, nil
	}

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return "", fmt.Errorf("loading credentials: %w", err)
	}

	key, err := mgr.ResolveKey(providerType, fromEnv)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

// PersonaFromConfig maps the persona section onto a coach persona.
func PersonaFromConfig(p config.PersonaConfig) coach.Persona {
	return coach.Persona{
		Name:     p.Name,
		Language: p.Language,
	}
}

// NewCoach builds the upstream provider and the coach around it.
func NewCoach(cfg *config.Config, apiKey string, log *slog.Logger) (*coach.Coach, error) {
	timeout, err := config.ParseTimeout(cfg.Gateway.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway timeout: %w", err)
	}

	p, err := provider.New(cfg.Gateway.Provider, provider.Options{
		BaseURL: cfg.Gateway.Upstream,
		Model:   cfg.Gateway.Model,
		APIKey:  apiKey,
		Timeout: timeout,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("creating provider: %w", err)
	}

	return coach.New(coach.Config{
		Provider: p,
		Persona:  PersonaFromConfig(cfg.Persona),
		Logger:   log,
	})
}

// WatchPersona applies persona edits in config.toml to co without a restart.
// It is a no-op when v was not loaded from a file.
func WatchPersona(v *viper.Viper, co *coach.Coach, log *slog.Logger) {
	if v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := config.Load(v)
		if err != nil {
			log.Error("ignoring config change", "file", e.Name, "error", err)
			return
		}

		current := co.Persona()
		if current.Name == cfg.Persona.Name && current.Language == cfg.Persona.Language {
			return
		}

		co.SetPersona(PersonaFromConfig(cfg.Persona))
		log.Info("persona reloaded",
			"name", co.Persona().Name,
			"language", co.Persona().Language,
		)
	})
	v.WatchConfig()
}

// GatewayOptions are the collaborators handed to NewGateway.
type GatewayOptions struct {
	ConfigDir  string
	Driver     storage.Driver
	Publisher  eventstream.Publisher
	DisableMCP bool
	Viper      *viper.Viper
	Logger     *slog.Logger
}

// NewGateway resolves the API key, builds the coach and wires it into a
// gateway. When opts.Viper is set, persona edits are hot reloaded.
func NewGateway(cfg *config.Config, opts GatewayOptions) (*gateway.Gateway, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	apiKey, err := ResolveAPIKey(opts.ConfigDir, cfg.Gateway.Provider, cfg.Gateway.APIKey)
	if err != nil {
		return nil, err
	}

	co, err := NewCoach(cfg, apiKey, log)
	if err != nil {
		return nil, err
	}

	if opts.Viper != nil {
		WatchPersona(opts.Viper, co, log)
	}

	return gateway.New(gateway.Config{
		ListenAddr:  cfg.Gateway.Listen,
		CORSOrigins: cfg.Gateway.CORSOrigins,
		RateLimit:   int(cfg.Gateway.RateLimit),
		Driver:      opts.Driver,
		Publisher:   opts.Publisher,
		DisableMCP:  opts.DisableMCP,
	}, co, log)
}
