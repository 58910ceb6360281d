package middlewares

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/logger"
)

// ErrorHandler renders every returned error as {success:false,message,error_code}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, msg := helper.FromFiberError(err)

	var fe *fiber.Error
	if code >= 500 {
		logger.FromCtx(c).Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)
		if !errors.As(err, &fe) || code == fiber.StatusInternalServerError {
			logger.Report(err, map[string]interface{}{
				"method":     c.Method(),
				"path":       c.Path(),
				"request_id": c.Locals(LocalsRequestID),
			})
		}
	}
	return helper.JsonError(c, code, msg)
}
