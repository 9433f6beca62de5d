package api

import (
	"log/slog"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/papercomputeco/innerai/pkg/logger"
	"github.com/papercomputeco/innerai/pkg/storage"
)

// Server is the API server for querying recorded gateway exchanges
type Server struct {
	config Config
	driver storage.Driver
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The driver is injected to allow sharing with the gateway when both run in
// one process.
func NewServer(config Config, driver storage.Driver, log *slog.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	s := &Server{
		config: config,
		driver: driver,
		logger: log,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/stats", s.handleStats)
	app.Get("/exchanges", s.handleListExchanges)
	app.Get("/exchanges/:id", s.handleGetExchange)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the API server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting API server",
		"listen", listener.Addr().String(),
	)
	return s.app.Listener(listener)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
