package gateway

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/innerai/pkg/coach"
	"github.com/papercomputeco/innerai/pkg/llm"
)

// errMalformedBody is returned when the request body is not a JSON object.
var errMalformedBody = errors.New("request body must be a JSON object")

// Messages returned to callers. Upstream detail is logged, never returned.
const (
	msgMalformedBody = "Invalid JSON body."
	msgRateLimited   = "Too many requests to the language model. Please try again later."
	msgInboundLimit  = "Too many requests. Please slow down."
	msgInternal      = "Internal server error."
)

var failureMessages = map[string]string{
	llm.OperationChat:    "Failed to get Gemini response.",
	llm.OperationReframe: "Failed to generate reframe.",
	llm.OperationStory:   "Failed to generate story.",
}

// failure is the HTTP outcome of an operation error.
type failure struct {
	status  int
	kind    string
	message string
}

// classify maps an operation error onto a status, an error kind for the
// journal, and the message the caller sees.
func classify(operation string, err error) failure {
	var validationErr *coach.ValidationError
	switch {
	case errors.Is(err, errMalformedBody):
		return failure{fiber.StatusBadRequest, llm.ErrorKindValidation, msgMalformedBody}
	case errors.As(err, &validationErr):
		return failure{fiber.StatusBadRequest, llm.ErrorKindValidation, validationErr.Error()}
	case errors.Is(err, llm.ErrRateLimited):
		return failure{fiber.StatusTooManyRequests, llm.ErrorKindRateLimited, msgRateLimited}
	case errors.Is(err, coach.ErrEmptyResult):
		return failure{fiber.StatusInternalServerError, llm.ErrorKindEmptyResult, failureMessage(operation)}
	default:
		return failure{fiber.StatusInternalServerError, llm.ErrorKindUpstream, failureMessage(operation)}
	}
}

func failureMessage(operation string) string {
	if msg, ok := failureMessages[operation]; ok {
		return msg
	}
	return msgInternal
}

// handleError is the fiber fallback for errors returned by handlers and
// middleware, such as unknown routes.
func (g *Gateway) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := msgInternal

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code >= fiber.StatusInternalServerError {
		g.logger.Error("unhandled request error",
			"path", c.Path(),
			"request_id", requestID(c),
			"error", err,
		)
	}

	return c.Status(code).JSON(llm.ErrorResponse{Error: message})
}

func (g *Gateway) handleLimitReached(c *fiber.Ctx) error {
	g.logger.Warn("inbound rate limit reached",
		"ip", c.IP(),
		"path", c.Path(),
	)
	return c.Status(fiber.StatusTooManyRequests).JSON(llm.ErrorResponse{Error: msgInboundLimit})
}
