package route

import (
	"github.com/gofiber/fiber/v2"

	"kindergarten_backend/internals/constants"
	"kindergarten_backend/internals/features/notifications/notifications/controller"
	authMiddleware "kindergarten_backend/internals/middlewares/auth"
)

func NotificationRoutes(app fiber.Router, ctrl *controller.NotificationController, requireAuth fiber.Handler) {
	notifs := app.Group("/api/notifications", requireAuth)
	staff := authMiddleware.OnlyRoles(constants.RoleErrorStaff("notifications"), constants.StaffAndAbove...)

	notifs.Get("/", ctrl.GetNotifications)
	notifs.Get("/export", staff, ctrl.ExportNotifications)
	notifs.Post("/send", staff, ctrl.SendNotification)
	notifs.Post("/broadcast", staff, ctrl.Broadcast)
}
