package route

import (
	"github.com/gofiber/fiber/v2"

	"kindergarten_backend/internals/constants"
	"kindergarten_backend/internals/features/users/user/controller"
	authMiddleware "kindergarten_backend/internals/middlewares/auth"
)

func UserRoutes(app fiber.Router, ctrl *controller.UserController, requireAuth fiber.Handler) {
	users := app.Group("/api/users", requireAuth)
	adminOnly := authMiddleware.OnlyRoles(constants.RoleErrorAdmin("user management"), constants.AdminOnly...)

	users.Get("/", ctrl.GetUsers)
	users.Get("/me", ctrl.GetMe)
	users.Get("/:id", ctrl.GetUser)

	users.Post("/", adminOnly, ctrl.CreateUser)
	users.Put("/:id", adminOnly, ctrl.UpdateUser)
	users.Patch("/:id/status", adminOnly, ctrl.UpdateStatus)
	users.Post("/:id/reset-password", adminOnly, ctrl.SendResetPassword)
	users.Delete("/:id", adminOnly, ctrl.DeleteUser)
}
