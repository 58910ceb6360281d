package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	helper "kindergarten_backend/internals/helpers"
)

func ipLimiter(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, message)
		},
	})
}

// Global limiter: untuk semua endpoint biasa
func GlobalRateLimiter() fiber.Handler {
	return ipLimiter(300, time.Minute, "Too many requests. Please try again later.")
}

// Rate limiter untuk login route (lebih ketat)
func LoginRateLimiter() fiber.Handler {
	return ipLimiter(5, time.Minute, "Too many login attempts. Please try again in a minute.")
}

// Rate limiter untuk signup route
func RegisterRateLimiter() fiber.Handler {
	return ipLimiter(5, 5*time.Minute, "Too many signup attempts. Please wait a few minutes.")
}

// Rate limiter untuk forgot-password
func ForgotPasswordRateLimiter() fiber.Handler {
	return ipLimiter(3, 10*time.Minute, "Too many password reset requests. Please try again in 10 minutes.")
}
