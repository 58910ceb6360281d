package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"kindergarten_backend/internals/configs"
	database "kindergarten_backend/internals/databases"
	"kindergarten_backend/internals/helpers/storage"
	"kindergarten_backend/internals/metrics"
)

func BaseRoutes(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Kindergarten backend is running!")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "Connected"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		if err := database.Ping(); err != nil {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    configs.AppEnv,
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(metrics.GetPrometheusHandler()))

	// file upload lokal (kalau OSS tidak dipakai)
	app.Static(storage.URLPrefix, configs.GetEnv("UPLOAD_DIR", "./uploads"), fiber.Static{
		MaxAge: 3600,
	})
}
