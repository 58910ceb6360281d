package realtime

import (
	"context"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"kindergarten_backend/internals/logger"
)

// TokenVerifier validates the ?token= query of the upgrade request.
type TokenVerifier func(ctx context.Context, rawToken string) (userID, role string, err error)

type subscribeMessage struct {
	Subscribe []string `json:"subscribe"`
}

// Upgrade rejects non-websocket requests and bad tokens before the handshake.
func Upgrade(verify TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		tok := strings.TrimSpace(c.Query("token"))
		if tok == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Access token required")
		}
		userID, role, err := verify(c.UserContext(), tok)
		if err != nil {
			return fiber.NewError(fiber.StatusForbidden, "Invalid or expired token")
		}
		c.Locals("ws_user_id", userID)
		c.Locals("ws_role", role)
		return c.Next()
	}
}

// Handler serves one websocket connection until it closes.
func Handler(h *Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("ws_user_id").(string)
		role, _ := conn.Locals("ws_role").(string)

		h.Register(conn, userID, role)
		defer func() {
			h.Unregister(conn)
			_ = conn.Close()
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var sub subscribeMessage
			if err := sonic.Unmarshal(msg, &sub); err != nil || sub.Subscribe == nil {
				logger.GetLogger().Debug("realtime: ignore message", zap.String("user_id", userID))
				continue
			}
			h.Subscribe(conn, sub.Subscribe)
		}
	})
}
