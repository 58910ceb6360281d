package middlewares

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kindergarten_backend/internals/logger"
)

const (
	HeaderRequestID = "X-Request-ID"
	LocalsRequestID = "request_id"
)

// RequestIDMiddleware attaches a request id, a request-scoped logger and a
// deadline to the user context.
func RequestIDMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(HeaderRequestID, requestID)
		c.Locals(LocalsRequestID, requestID)

		ctxLogger := logger.GetLogger().With(zap.String("request_id", requestID))
		c.Locals(logger.LocalsLogger, ctxLogger)

		ctx := logger.WithContext(c.UserContext(), ctxLogger)
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		c.SetUserContext(ctx)

		return c.Next()
	}
}
