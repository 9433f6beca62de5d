package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/papercomputeco/innerai/pkg/llm"
)

// maxRecordedRequest caps the request body copied into the journal.
const maxRecordedRequest = 64 << 10

// handlePing returns a simple health check response.
func (g *Gateway) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleChat continues a conversation in the coaching persona.
func (g *Gateway) handleChat(c *fiber.Ctx) error {
	exchange := g.newExchange(c, llm.OperationChat)

	var body chatBody
	if err := decodeBody(c.Body(), &body); err != nil {
		return g.fail(c, exchange, err)
	}

	language := body.language()
	exchange.Language = language
	if exchange.Language == "" {
		exchange.Language = g.coach.Persona().Language
	}

	reply, err := g.coach.Converse(c.Context(), body.Messages, language)
	if err != nil {
		return g.fail(c, exchange, err)
	}

	return g.succeed(c, exchange, reply, llm.ChatResponse{Reply: reply})
}

// chatBody is the /api/chat body as received. Messages are never decoded
// here, and a language that is not a string is ignored.
type chatBody struct {
	Messages json.RawMessage `json:"messages"`
	Language json.RawMessage `json:"language"`
}

func (b *chatBody) language() string {
	var language string
	if err := json.Unmarshal(b.Language, &language); err != nil {
		return ""
	}
	return language
}

// handleReframe returns one short positive reframe of a negative belief.
func (g *Gateway) handleReframe(c *fiber.Ctx) error {
	exchange := g.newExchange(c, llm.OperationReframe)

	var req llm.ReframeRequest
	if err := decodeBody(c.Body(), &req); err != nil {
		return g.fail(c, exchange, err)
	}

	reframe, err := g.coach.Reframe(c.Context(), req.Emotion, req.Belief)
	if err != nil {
		return g.fail(c, exchange, err)
	}

	return g.succeed(c, exchange, reframe, llm.ReframeResponse{Reframe: reframe})
}

// handleStory returns a short resilience story for an emotion and belief.
func (g *Gateway) handleStory(c *fiber.Ctx) error {
	exchange := g.newExchange(c, llm.OperationStory)

	var req llm.StoryRequest
	if err := decodeBody(c.Body(), &req); err != nil {
		return g.fail(c, exchange, err)
	}

	story, err := g.coach.Story(c.Context(), req.Emotion, req.Belief)
	if err != nil {
		return g.fail(c, exchange, err)
	}

	return g.succeed(c, exchange, story, llm.StoryResponse{Story: story})
}

// newExchange starts the journal record for an operation.
func (g *Gateway) newExchange(c *fiber.Ctx, operation string) *llm.Exchange {
	exchange := &llm.Exchange{
		ID:        uuid.NewString(),
		RequestID: requestID(c),
		Operation: operation,
		Model:     g.coach.Model(),
		StartedAt: time.Now().UTC(),
	}

	// c.Body is only valid for the lifetime of the handler.
	body := c.Body()
	if len(body) <= maxRecordedRequest && json.Valid(body) {
		exchange.Request = json.RawMessage(bytes.Clone(body))
	}

	return exchange
}

func (g *Gateway) succeed(c *fiber.Ctx, exchange *llm.Exchange, reply string, resp any) error {
	exchange.Reply = reply
	exchange.Status = fiber.StatusOK
	exchange.DurationMs = time.Since(exchange.StartedAt).Milliseconds()

	g.logger.Debug("operation completed",
		"operation", exchange.Operation,
		"request_id", exchange.RequestID,
		"duration_ms", exchange.DurationMs,
	)

	g.record(exchange)
	return c.JSON(resp)
}

func (g *Gateway) fail(c *fiber.Ctx, exchange *llm.Exchange, err error) error {
	f := classify(exchange.Operation, err)

	exchange.Status = f.status
	exchange.ErrorKind = f.kind
	exchange.DurationMs = time.Since(exchange.StartedAt).Milliseconds()

	attrs := []any{
		"operation", exchange.Operation,
		"request_id", exchange.RequestID,
		"status", f.status,
		"error_kind", f.kind,
		"error", err,
	}
	if f.status >= fiber.StatusInternalServerError {
		g.logger.Error("operation failed", attrs...)
	} else {
		g.logger.Warn("operation rejected", attrs...)
	}

	g.record(exchange)
	return c.Status(f.status).JSON(llm.ErrorResponse{Error: f.message})
}

// decodeBody unmarshals a JSON object body into v. An empty body decodes as
// an empty object.
func decodeBody(body []byte, v any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %w", errMalformedBody, err)
	}
	return nil
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
	return id
}
