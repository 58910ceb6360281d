package middlewares

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"kindergarten_backend/internals/logger"
)

// RecoveryMiddleware menangkap panic, lapor ke rollbar, lalu jadi 500 lewat ErrorHandler
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			logger.FromCtx(c).Error("panic recovered",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("panic", fmt.Sprint(e)),
				zap.Stack("stack"),
			)
			logger.ReportPanic(e, map[string]interface{}{
				"method": c.Method(),
				"path":   c.Path(),
			})
		},
	})
}
