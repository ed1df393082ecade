package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestLogger returns a middleware that logs every request with a
// generated request id, latency, and outcome. The request id is stored
// in locals for handlers that want to correlate their own log lines.
func RequestLogger(logger *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := uuid.NewString()
		c.Locals("requestid", requestID)

		err := c.Next()

		statusCode := c.Response().StatusCode()
		entry := logger.WithFields(logrus.Fields{
			"request_id":  requestID,
			"http_method": c.Method(),
			"uri":         c.OriginalURL(),
			"status_code": statusCode,
			"latency_ms":  time.Since(start).Milliseconds(),
			"client_ip":   c.IP(),
		})

		switch {
		case err != nil:
			entry.WithField("error", err.Error()).Error("Request processing failed")
		case statusCode >= 500:
			entry.Error("Request completed with server error")
		case statusCode >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed")
		}

		// Return the error so Fiber's error handler still runs.
		return err
	}
}
