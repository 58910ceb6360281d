package route

import (
	"github.com/gofiber/fiber/v2"

	"kindergarten_backend/internals/constants"
	"kindergarten_backend/internals/features/school/classes/controller"
	authMiddleware "kindergarten_backend/internals/middlewares/auth"
)

func ClassRoutes(app fiber.Router, ctrl *controller.ClassController, requireAuth fiber.Handler) {
	classes := app.Group("/api/classes", requireAuth)
	staffOnly := authMiddleware.OnlyRoles(constants.RoleErrorStaff("class management"), constants.StaffAndAbove...)

	classes.Get("/", ctrl.GetClasses)
	classes.Get("/:id", ctrl.GetClass)
	classes.Post("/", staffOnly, ctrl.CreateClass)
	classes.Put("/:id", staffOnly, ctrl.UpdateClass)
	classes.Delete("/:id", staffOnly, ctrl.DeleteClass)
}
