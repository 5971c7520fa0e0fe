package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservabilityLogsApiRequests(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	app := fiber.New()
	app.Use(Observability(logger))
	app.Get("/api/surveys/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})
	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/surveys/9", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	logged := buf.String()
	assert.Contains(t, logged, `"route":"/api/surveys/:id"`)
	assert.Contains(t, logged, `"status":404`)
	assert.Contains(t, logged, `"level":"warn"`)

	buf.Reset()
	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestResponseStatusFromError(t *testing.T) {
	app := fiber.New()
	var fromFiberErr, fromPlainErr int
	app.Get("/", func(c *fiber.Ctx) error {
		fromFiberErr = responseStatus(c, fiber.ErrTeapot)
		fromPlainErr = responseStatus(c, assert.AnError)
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, fromFiberErr)
	assert.Equal(t, fiber.StatusInternalServerError, fromPlainErr)
}

func TestIsStreamRoute(t *testing.T) {
	assert.True(t, isStreamRoute("/api/notifications/stream"))
	assert.True(t, isStreamRoute("/api/notifications/ws"))
	assert.False(t, isStreamRoute("/api/notifications/unread-count"))
}
