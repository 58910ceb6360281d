// middlewares/cors.go

package middlewares

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"kindergarten_backend/internals/configs"
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:19006",
	"https://kindergarten-frontend.onrender.com",
	"https://kindergarten-backend-s82q.onrender.com",
}

var originPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://kindergarten-[a-z0-9-]+\.onrender\.com$`),
	regexp.MustCompile(`^https?://localhost(:\d+)?$`),
	regexp.MustCompile(`^https?://\d+\.\d+\.\d+\.\d+(:\d+)?$`),
}

// OriginAllowed: allow-list + regex; di luar production semua origin boleh.
func OriginAllowed(origin string, production bool, extra []string) bool {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" || !production {
		return true
	}
	for _, o := range defaultOrigins {
		if o == origin {
			return true
		}
	}
	for _, o := range extra {
		if strings.TrimRight(o, "/") == origin {
			return true
		}
	}
	for _, re := range originPatterns {
		if re.MatchString(origin) {
			return true
		}
	}
	return false
}

// CorsMiddleware membuat middleware CORS
func CorsMiddleware() fiber.Handler {
	production := configs.IsProduction()
	extra := configs.CORSOrigins
	return cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return OriginAllowed(origin, production, extra)
		},
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type, Authorization, X-Requested-With, Accept, X-Access-Token, X-Refresh-Token",
		ExposeHeaders:    "Content-Disposition, X-Request-ID",
		AllowCredentials: true,
	})
}
