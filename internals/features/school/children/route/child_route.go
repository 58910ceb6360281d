package route

import (
	"github.com/gofiber/fiber/v2"

	"kindergarten_backend/internals/constants"
	"kindergarten_backend/internals/features/school/children/controller"
	authMiddleware "kindergarten_backend/internals/middlewares/auth"
)

func ChildRoutes(app fiber.Router, ctrl *controller.ChildController, requireAuth fiber.Handler) {
	children := app.Group("/api/children", requireAuth)
	team := authMiddleware.OnlyRoles(constants.RoleErrorTeam("children management"), constants.TeamRoles...)
	staff := authMiddleware.OnlyRoles(constants.RoleErrorStaff("children management"), constants.StaffAndAbove...)

	children.Get("/", ctrl.GetChildren)
	children.Get("/export", team, ctrl.ExportChildren)
	children.Post("/import", staff, ctrl.ImportChildren)
	children.Get("/:id", ctrl.GetChild)
	children.Get("/:id/parents", ctrl.GetChildParents)

	children.Post("/", team, ctrl.CreateChild)
	children.Put("/:id", team, ctrl.UpdateChild)
	children.Delete("/:id", staff, ctrl.DeleteChild)
}
