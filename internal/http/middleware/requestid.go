package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader propagates request IDs between services.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey stores the request ID in Fiber's context locals. The
	// logger and the error payload both read it from there.
	RequestIDLocalKey = "request_id"

	// maxRequestIDLength bounds attacker-controlled header values before they
	// reach log lines and response bodies.
	maxRequestIDLength = 128
)

// RequestID ensures every request carries a request ID. An incoming
// X-Request-ID is reused so IDs stay stable across service hops; a missing or
// oversized one is replaced with a fresh UUID. The ID is stored in context
// locals and echoed on the response.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
