package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"meetmatch/internal/services"
)

// RequestTimeout bounds the user context of every downstream handler by d.
// Handlers that give up because of it answer 408, which the error handler
// reports as 504.
func RequestTimeout(d time.Duration) fiber.Handler {
	if d <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return timeout.NewWithContext(func(c *fiber.Ctx) error {
		return c.Next()
	}, d, services.ErrTimeout)
}
