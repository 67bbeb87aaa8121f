package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id on both requests and responses.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is where the id is stored in the Fiber context locals,
	// read by the request logger and the error envelope.
	RequestIDLocalKey = "request_id"
)

// RequestID tags every request with an id for log correlation. A
// client-supplied X-Request-ID is trusted and propagated; without one a fresh
// UUID is issued. The id is placed in the context locals and echoed on the
// response header either way.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, rid)
		c.Set(RequestIDHeader, rid)

		return c.Next()
	}
}
