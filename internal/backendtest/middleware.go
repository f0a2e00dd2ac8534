package backendtest

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader   = "X-Request-ID"
	requestIDLocalKey = "request_id"
)

// requestID keeps the caller's X-Request-ID, or generates one, and echoes it on the response.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(requestIDLocalKey, id)
		c.Set(requestIDHeader, id)
		return c.Next()
	}
}

func requestIDFromCtx(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDLocalKey).(string)
	return id
}

// logRequests logs one line per request once the handler chain has finished.
func logRequests(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debug("backend request",
			zap.String("request_id", requestIDFromCtx(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000),
		)
		return err
	}
}
