package middleware

import (
	"time"

	"examprep/backend/metrics"
	"examprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// LoggingMiddleware logs one line per request and records its duration.
// Errors are rendered first so the logged status matches the response.
func LoggingMiddleware(logger *utils.Logger, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		latency := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		fields := []interface{}{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", latency,
			"ip", c.IP(),
		}
		if id, ok := utils.IdentityFrom(c); ok {
			fields = append(fields, "user_id", id.UserID)
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}

		m.ObserveRequest(c.Method(), route, status, latency)
		return nil
	}
}
