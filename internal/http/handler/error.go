package handler

import (
	"github.com/gofiber/fiber/v2"

	"driftwatch/internal/http/middleware"
)

// errorPayload is the error body of every non-2xx response. The request_id
// lets a client quote the exact log line when reporting a failure.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// writeError writes the standardized error body. code is a stable
// machine-readable identifier (e.g. "NOT_FOUND", "TRANSITION_DISABLED");
// message must be safe to show a caller, internal error details never
// leave the service through it.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

// ErrorHandler converts errors that escape the handlers (unmatched routes,
// wrong methods, panics surfaced as fiber errors) into the same payload
// shape writeError produces.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusServiceUnavailable:
			return writeError(c, status, "SERVICE_UNAVAILABLE", "service unavailable")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
