package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/survey-go-api/internal/observability"
)

// streamSuffixes mark long-lived notification routes whose duration is not request latency.
var streamSuffixes = []string{"/stream", "/ws"}

// Observability records request counters and latency for /api routes and logs
// each completed request at a level derived from its status.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		if !strings.HasPrefix(c.Path(), "/api") {
			return err
		}

		route := routeTemplate(c)
		method := c.Method()
		status := responseStatus(c, err)
		code := strconv.Itoa(status)

		observability.APIRequests().WithLabelValues(method, route, code).Inc()
		if status >= fiber.StatusBadRequest {
			observability.APIErrors().WithLabelValues(method, route, code).Inc()
		}
		if isStreamRoute(route) {
			return err
		}
		observability.APILatency().WithLabelValues(method, route).Observe(elapsed.Seconds())

		event := levelFor(logger, status)
		event.
			Str("correlation_id", GetCorrelationID(c)).
			Str("method", method).
			Str("route", route).
			Int("status", status).
			Uint("user_id", UserID(c)).
			Dur("latency", elapsed).
			Msg("request completed")

		return err
	}
}

// responseStatus reports the status the error handler will write when the chain failed.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

func levelFor(logger zerolog.Logger, status int) *zerolog.Event {
	switch {
	case status >= fiber.StatusInternalServerError:
		return logger.Error()
	case status >= fiber.StatusBadRequest:
		return logger.Warn()
	default:
		return logger.Debug()
	}
}

func routeTemplate(c *fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "" {
		return route.Path
	}
	return c.Path()
}

func isStreamRoute(route string) bool {
	for _, suffix := range streamSuffixes {
		if strings.HasSuffix(route, suffix) {
			return true
		}
	}
	return false
}
