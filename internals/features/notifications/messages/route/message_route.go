package route

import (
	"github.com/gofiber/fiber/v2"

	"kindergarten_backend/internals/features/notifications/messages/controller"
)

func MessageRoutes(app fiber.Router, ctrl *controller.MessageController, requireAuth fiber.Handler) {
	msgs := app.Group("/api/messages", requireAuth)

	msgs.Get("/", ctrl.GetMessages)
	msgs.Get("/export", ctrl.ExportMessages)
	msgs.Post("/", ctrl.CreateMessage)
}
