package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestRateLimitBlocksPerClientIP(t *testing.T) {
	app := fiber.New()
	app.Post("/login", RateLimit("login", 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("X-Forwarded-For", ip)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusOK, send("203.0.113.1"))
	require.Equal(t, fiber.StatusOK, send("203.0.113.1"))
	require.Equal(t, fiber.StatusTooManyRequests, send("203.0.113.1"))
	require.Equal(t, fiber.StatusOK, send("203.0.113.2"))
}

func TestRateLimitKeysAuthenticatedUsersSeparately(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id, err := strconv.ParseUint(c.Get("X-Test-User"), 10, 64); err == nil {
			c.Locals("user_id", uint(id))
		}
		return c.Next()
	})
	app.Get("/surveys", RateLimit("api", 1, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	send := func(user string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, "/surveys", nil)
		req.Header.Set("X-Forwarded-For", "198.51.100.7")
		req.Header.Set("X-Test-User", user)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	require.Equal(t, fiber.StatusOK, send("1").StatusCode)
	require.Equal(t, fiber.StatusOK, send("2").StatusCode)

	blocked := send("1")
	require.Equal(t, fiber.StatusTooManyRequests, blocked.StatusCode)
	require.Equal(t, "60", blocked.Header.Get(fiber.HeaderRetryAfter))
}
