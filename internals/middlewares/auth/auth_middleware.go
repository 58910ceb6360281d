// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	authService "kindergarten_backend/internals/features/users/auth/service"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/logger"
)

const (
	msgTokenRequired = "Access token required"
	msgTokenInvalid  = "Invalid or expired token"
	msgTokenRevoked  = "Token has been revoked"
	msgUserDisabled  = "Account is disabled"
)

type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*authService.Claims, error)
}

// Public webhook path yang di-skip auth
var skipPaths = map[string]struct{}{
	"/api/payments/midtrans/notification": {},
}

func AuthMiddleware(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := skipPaths[c.Path()]; ok {
			return c.Next()
		}

		raw := helper.GetRawAccessToken(c)
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, msgTokenRequired)
		}

		claims, err := a.Authenticate(c.UserContext(), raw)
		if err != nil {
			return authError(c, err)
		}

		storeClaims(c, raw, claims)
		return c.Next()
	}
}

// OptionalAuth fills Locals when a valid token is present and never rejects.
func OptionalAuth(a Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := helper.GetRawAccessToken(c)
		if raw == "" {
			return c.Next()
		}
		if claims, err := a.Authenticate(c.UserContext(), raw); err == nil {
			storeClaims(c, raw, claims)
		}
		return c.Next()
	}
}

func authError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, authService.ErrTokenRevoked):
		return fiber.NewError(fiber.StatusUnauthorized, msgTokenRevoked)
	case errors.Is(err, authService.ErrUserInactive):
		return fiber.NewError(fiber.StatusForbidden, msgUserDisabled)
	case errors.Is(err, authService.ErrInvalidToken), errors.Is(err, authService.ErrTokenExpired):
		return fiber.NewError(fiber.StatusForbidden, msgTokenInvalid)
	default:
		logger.FromCtx(c).Error("authenticate failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
	}
}

func storeClaims(c *fiber.Ctx, raw string, claims *authService.Claims) {
	c.Locals(helper.LocUserID, claims.UserID.String())
	c.Locals(helper.LocUserRole, claims.Role)
	c.Locals(helper.LocEmail, claims.Email)
	c.Locals(helper.LocRawToken, raw)
}
