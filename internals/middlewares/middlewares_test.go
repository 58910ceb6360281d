package middlewares

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOriginAllowed(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		prod   bool
		extra  []string
		want   bool
	}{
		{name: "no origin", origin: "", prod: true, want: true},
		{name: "dev allows all", origin: "https://evil.test", prod: false, want: true},
		{name: "allow-list", origin: "https://kindergarten-frontend.onrender.com", prod: true, want: true},
		{name: "render preview", origin: "https://kindergarten-pr-12.onrender.com", prod: true, want: true},
		{name: "localhost any port", origin: "http://localhost:8080", prod: true, want: true},
		{name: "bare ip", origin: "http://192.168.1.10:3000", prod: true, want: true},
		{name: "env extra", origin: "https://school.example.com", prod: true, extra: []string{"https://school.example.com/"}, want: true},
		{name: "rejected", origin: "https://evil.test", prod: true, want: false},
		{name: "lookalike", origin: "https://kindergarten-x.onrender.com.evil.test", prod: true, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OriginAllowed(tt.origin, tt.prod, tt.extra))
		})
	}
}

func TestErrorHandlerShape(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(RequestIDMiddleware(0))
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "Child not found") })
	app.Get("/plain", func(c *fiber.Ctx) error { return errors.New("db exploded") })

	resp, err := app.Test(httptest.NewRequest("GET", "/fiber", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"success":false,"message":"Child not found","error_code":"NOT_FOUND"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))

	resp, err = app.Test(httptest.NewRequest("GET", "/plain", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "db exploded")
}

func TestRequestIDPropagated(t *testing.T) {
	app := fiber.New()
	app.Use(RequestIDMiddleware(0))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(c.Locals(LocalsRequestID).(string)) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "abc-123", string(body))
	assert.Equal(t, "abc-123", resp.Header.Get(HeaderRequestID))
}

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(RecoveryMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestLoginRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/login", LoginRateLimiter(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	var last int
	for i := 0; i < 6; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		require.NoError(t, err)
		last = resp.StatusCode
	}
	assert.Equal(t, fiber.StatusTooManyRequests, last)
}
