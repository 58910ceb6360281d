package route

import (
	"github.com/gofiber/fiber/v2"

	"kindergarten_backend/internals/constants"
	"kindergarten_backend/internals/features/home/dashboard/controller"
	authMiddleware "kindergarten_backend/internals/middlewares/auth"
)

func DashboardRoutes(app fiber.Router, ctrl *controller.DashboardController, requireAuth fiber.Handler) {
	dash := app.Group("/api/dashboard", requireAuth,
		authMiddleware.OnlyRoles(constants.RoleErrorTeam("dashboard"), constants.TeamRoles...))
	dash.Get("/stats", ctrl.GetStats)
}
