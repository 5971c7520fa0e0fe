package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/middleware"
)

func TestRequireUserAllowsAuthenticated(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(10))
		c.Locals("user_role", "Student")
		return c.Next()
	})
	app.Use(middleware.RequireUser())
	var (
		userID uint
		role   string
	)
	app.Get("/", func(c *fiber.Ctx) error {
		userID = middleware.UserID(c)
		role = middleware.UserRole(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp := perform(t, app, nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	require.Equal(t, uint(10), userID)
	require.Equal(t, "student", role)
}

func TestRequireUserRejectsAnonymous(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RequireUser())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp := perform(t, app, nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuditActorPrefersForwardedFor(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(4))
		return c.Next()
	})
	var actor audit.Actor
	app.Get("/", func(c *fiber.Ctx) error {
		actor = middleware.AuditActor(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp := perform(t, app, http.Header{"X-Forwarded-For": {"198.51.100.7, 10.0.0.1"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, actor.UserID)
	require.Equal(t, uint(4), *actor.UserID)
	require.Equal(t, "198.51.100.7", actor.IP)
}

func perform(t *testing.T, app *fiber.App, headers http.Header) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
