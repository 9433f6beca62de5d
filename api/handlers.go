package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/innerai/pkg/llm"
	"github.com/papercomputeco/innerai/pkg/storage"
)

// maxListLimit caps the limit query parameter of /exchanges.
const maxListLimit = 500

// ListResponse is the body of GET /exchanges.
type ListResponse struct {
	Count     int             `json:"count"`
	Exchanges []*llm.Exchange `json:"exchanges"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleStats returns aggregate counts across the journal.
func (s *Server) handleStats(c *fiber.Ctx) error {
	stats, err := s.driver.Stats(c.Context())
	if err != nil {
		s.logger.Error("failed to compute stats", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to compute stats"})
	}

	return c.JSON(stats)
}

// handleListExchanges returns the most recent exchanges, newest first.
func (s *Server) handleListExchanges(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", storage.DefaultListLimit)
	if limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "limit must be a positive integer"})
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	exchanges, err := s.driver.List(c.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list exchanges", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list exchanges"})
	}

	if exchanges == nil {
		exchanges = []*llm.Exchange{}
	}

	return c.JSON(ListResponse{
		Count:     len(exchanges),
		Exchanges: exchanges,
	})
}

// handleGetExchange returns a single exchange by its ID.
func (s *Server) handleGetExchange(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "id parameter required"})
	}

	exchange, err := s.driver.Get(c.Context(), id)
	if err != nil {
		var notFound storage.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "exchange not found"})
		}
		s.logger.Error("failed to get exchange", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to get exchange"})
	}

	return c.JSON(exchange)
}
