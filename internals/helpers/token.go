// helpers/token.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kindergarten_backend/internals/constants"
)

// Locals keys set by the auth middleware.
const (
	LocUserID   = "user_id"
	LocUserRole = "userRole"
	LocEmail    = "email"
	LocRawToken = "raw_token"
)

// GetRawAccessToken mengembalikan access token dari:
// 1) Locals("raw_token") yang diset middleware
// 2) Authorization header "Bearer <token>"
// 3) cookie "access_token"
func GetRawAccessToken(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocRawToken).(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	fields := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(fields) == 2 && strings.EqualFold(fields[0], "Bearer") {
		return strings.Trim(fields[1], "\"'")
	}
	return strings.TrimSpace(c.Cookies("access_token"))
}

// Ambil user_id dari c.Locals("user_id").
// Return 401 kalau belum login, 400 kalau formatnya tidak valid.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	switch t := c.Locals(LocUserID).(type) {
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Access token required")
		}
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Access token required")
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid user id in token")
		}
		return id, nil
	default:
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Access token required")
	}
}

func GetRoleFromToken(c *fiber.Ctx) string {
	role, _ := c.Locals(LocUserRole).(string)
	return role
}

// IsManagerRequest reports whether the caller sees every record.
func IsManagerRequest(c *fiber.Ctx) bool {
	return constants.IsManager(GetRoleFromToken(c))
}

// IsParentRequest reports whether list results must be scoped to the caller.
func IsParentRequest(c *fiber.Ctx) bool {
	return GetRoleFromToken(c) == constants.RoleParent
}
