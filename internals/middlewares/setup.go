package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"kindergarten_backend/internals/configs"
	"kindergarten_backend/internals/metrics"
	accessLogger "kindergarten_backend/internals/middlewares/logger"
)

// SetupMiddlewares registers the global chain. Order: request id first so
// every later layer logs with it, recover before handlers.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RequestIDMiddleware(configs.GetDuration("REQUEST_TIMEOUT", 30*time.Second)))
	app.Use(RecoveryMiddleware())
	app.Use(accessLogger.LoggerMiddleware())
	app.Use(metrics.NewHTTPMetrics(configs.AppName).Middleware())
	app.Use(CorsMiddleware())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(etag.New())
	app.Use(GlobalRateLimiter())
}
