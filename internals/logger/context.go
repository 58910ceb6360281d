package logger

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	LocalsLogger            = "logger"
)

// FromContext retrieves the logger from the context
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return GetLogger()
	}
	l, ok := ctx.Value(loggerKey).(*zap.Logger)
	if !ok {
		return GetLogger()
	}
	return l
}

// WithContext adds the logger to the context
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromCtx returns the request-scoped logger set by the request logger middleware.
func FromCtx(c *fiber.Ctx) *zap.Logger {
	if l, ok := c.Locals(LocalsLogger).(*zap.Logger); ok && l != nil {
		return l
	}
	return GetLogger()
}
