package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCategory(t *testing.T) {
	assert.Equal(t, "2xx", statusCategory(201))
	assert.Equal(t, "4xx", statusCategory(404))
	assert.Equal(t, "5xx", statusCategory(503))
	assert.Equal(t, "", statusCategory(99))
}

func TestMiddlewareCountsRoutePattern(t *testing.T) {
	m := NewHTTPMetrics("test")
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "nope")
	})

	before := testutil.ToFloat64(RequestCounter.WithLabelValues("test", "GET", "/items/:id", "404"))
	resp, err := app.Test(httptest.NewRequest("GET", "/items/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	after := testutil.ToFloat64(RequestCounter.WithLabelValues("test", "GET", "/items/:id", "404"))
	assert.Equal(t, before+1, after)
}

func TestRecordLogin(t *testing.T) {
	Register()
	before := testutil.ToFloat64(AuthAttemptsCounter.WithLabelValues("password", "failure"))
	RecordLogin("password", false)
	assert.Equal(t, before+1, testutil.ToFloat64(AuthAttemptsCounter.WithLabelValues("password", "failure")))
}
