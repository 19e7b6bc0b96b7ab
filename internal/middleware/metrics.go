package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"meetmatch/internal/metrics"
)

// Metrics records request counts and latencies per route. Errors are
// rendered here so the recorded status is the one sent to the client.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		// Method is backed by the request buffer, which fasthttp reuses.
		route := c.Route().Path
		method := utils.CopyString(c.Method())
		status := strconv.Itoa(c.Response().StatusCode())
		metrics.APIRequestsTotal.WithLabelValues(method, route, status).Inc()
		metrics.APIRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return nil
	}
}
