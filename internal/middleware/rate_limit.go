package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/survey-go-api/internal/utils"
)

const (
	defaultRateLimit  = 10
	defaultRateWindow = time.Minute
)

// RateLimit caps requests inside a sliding window. Authenticated callers are
// keyed by user id and anonymous ones, such as login and register, by client IP.
func RateLimit(scope string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = defaultRateLimit
	}
	if window <= 0 {
		window = defaultRateWindow
	}

	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return rateLimitKey(scope, c) },
		LimitReached: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests, try again later")
		},
	})
}

func rateLimitKey(scope string, c *fiber.Ctx) string {
	if id := UserID(c); id > 0 {
		return scope + ":user:" + strconv.FormatUint(uint64(id), 10)
	}
	return scope + ":ip:" + AuditActor(c).IP
}
