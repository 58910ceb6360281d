// file: internals/features/users/auth/route/auth_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	"kindergarten_backend/internals/features/users/auth/controller"
	rateLimiter "kindergarten_backend/internals/middlewares"
)

// AuthRoutes mounts /api/auth. requireAuth and optionalAuth come from the
// auth middleware package; signup uses optionalAuth so an admin caller may
// create another admin.
func AuthRoutes(app fiber.Router, ctrl *controller.AuthController, requireAuth, optionalAuth fiber.Handler) {
	baseAuth := app.Group("/api/auth")

	// 🔓 Public
	baseAuth.Post("/login", rateLimiter.LoginRateLimiter(), ctrl.Login)
	baseAuth.Post("/signup", rateLimiter.RegisterRateLimiter(), optionalAuth, ctrl.Signup)
	baseAuth.Post("/login-google", rateLimiter.LoginRateLimiter(), ctrl.LoginGoogle)
	baseAuth.Post("/forgot-password", rateLimiter.ForgotPasswordRateLimiter(), ctrl.ForgotPassword)
	baseAuth.Post("/reset-password", rateLimiter.ForgotPasswordRateLimiter(), ctrl.ResetPassword)

	// 🔐 Protected
	baseAuth.Get("/me", requireAuth, ctrl.Me)
	baseAuth.Post("/logout", requireAuth, ctrl.Logout)
	baseAuth.Post("/change-password", requireAuth, ctrl.ChangePassword)
	baseAuth.Put("/fcm-token", requireAuth, ctrl.UpdateFCMToken)
}
