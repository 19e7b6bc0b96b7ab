package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Preflight answers every OPTIONS request with an empty 200. It must run
// before the CORS middleware so the CORS headers are still written.
func Preflight() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodOptions {
			return c.Next()
		}

		// Unrouted OPTIONS requests surface as 404/405 fiber errors.
		var fiberErr *fiber.Error
		if err := c.Next(); err != nil && !errors.As(err, &fiberErr) {
			return err
		}
		c.Response().ResetBody()
		c.Status(fiber.StatusOK)
		return nil
	}
}
