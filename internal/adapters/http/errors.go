package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geovocab/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, upstream_error, ...
	Message   string `json:"message"` // human-readable
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals(localRequestID).(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// envelopeError answers in the same envelope the upstream uses, so clients
// of the proxy can treat it as the upstream.
func envelopeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(domain.Envelope[*domain.GeoVocabResult]{
		Message: msg,
		Status:  status,
	})
}

// errLookup maps a failed upstream lookup onto a status. The upstream
// message is passed through when there is one.
func errLookup(c *fiber.Ctx, err error, fallback string) error {
	msg := domain.UserMessage(err, fallback)

	var le *domain.LookupError
	if !errors.As(err, &le) {
		return envelopeError(c, fiber.StatusInternalServerError, msg)
	}
	c.Locals(localLookupKind, string(le.Kind))
	switch le.Kind {
	case domain.KindNotFound:
		return envelopeError(c, fiber.StatusNotFound, msg)
	case domain.KindRejected, domain.KindInput:
		return envelopeError(c, fiber.StatusBadRequest, msg)
	case domain.KindNetwork:
		return envelopeError(c, fiber.StatusServiceUnavailable, msg)
	default:
		return envelopeError(c, fiber.StatusBadGateway, msg)
	}
}
