// Package gateway serves the coaching operations over HTTP. Each request is
// one prompted completion against the upstream provider; completed exchanges
// are handed to a worker pool for journaling off the hot path.
package gateway

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/papercomputeco/innerai/gateway/mcp"
	"github.com/papercomputeco/innerai/gateway/worker"
	"github.com/papercomputeco/innerai/pkg/coach"
	"github.com/papercomputeco/innerai/pkg/llm"
	"github.com/papercomputeco/innerai/pkg/logger"
)

// Gateway is the coaching HTTP server.
type Gateway struct {
	config     Config
	coach      *coach.Coach
	workerPool *worker.Pool
	logger     *slog.Logger
	server     *fiber.App
}

// New creates a new Gateway serving operations through co.
func New(config Config, co *coach.Coach, log *slog.Logger) (*Gateway, error) {
	if co == nil {
		return nil, fmt.Errorf("coach is required")
	}
	if log == nil {
		log = logger.Nop()
	}
	if config.Service == "" {
		config.Service = DefaultService
	}

	g := &Gateway{
		config: config,
		coach:  co,
		logger: log,
	}

	if config.Driver != nil {
		wp, err := worker.NewPool(&worker.Config{
			Driver:    config.Driver,
			Publisher: config.Publisher,
			Service:   config.Service,
			Logger:    log,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create worker pool: %w", err)
		}
		g.workerPool = wp
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		ErrorHandler:          g.handleError,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins(config.CORSOrigins),
		AllowMethods: "GET,POST,OPTIONS",
	}))
	app.Use(compress.New())

	app.Get("/ping", g.handlePing)

	api := app.Group("/api")
	if config.RateLimit > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:          config.RateLimit,
			Expiration:   time.Minute,
			LimitReached: g.handleLimitReached,
		}))
	}
	api.Post("/chat", g.handleChat)
	api.Post("/reframe", g.handleReframe)
	api.Post("/story", g.handleStory)

	if !config.DisableMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Coach:  co,
			Logger: log,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create MCP server: %w", err)
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	g.server = app
	return g, nil
}

// Run starts the gateway server on the configured listening address
func (g *Gateway) Run() error {
	g.logger.Info("starting gateway server",
		"listen", g.config.ListenAddr,
		"model", g.coach.Model(),
	)

	return g.server.Listen(g.config.ListenAddr)
}

// RunWithListener starts the gateway server using the provided listener.
func (g *Gateway) RunWithListener(listener net.Listener) error {
	g.logger.Info("starting gateway server",
		"listen", listener.Addr().String(),
		"model", g.coach.Model(),
	)

	return g.server.Listener(listener)
}

// Close gracefully shuts down the gateway and waits for the worker pool to drain
func (g *Gateway) Close() error {
	err := g.server.Shutdown()
	if g.workerPool != nil {
		g.workerPool.Close()
	}
	return err
}

// record hands an exchange to the worker pool. It never blocks.
func (g *Gateway) record(exchange *llm.Exchange) {
	if g.workerPool == nil {
		return
	}
	g.workerPool.Enqueue(worker.Job{Exchange: exchange})
}

func corsOrigins(origins string) string {
	origins = strings.TrimSpace(origins)
	if origins == "" {
		return "*"
	}
	return origins
}
