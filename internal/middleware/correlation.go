package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// HeaderCorrelationID is echoed on every response.
	HeaderCorrelationID = "X-Correlation-ID"
	headerRequestID     = "X-Request-ID"
	correlationLocal    = "correlation_id"
	maxCorrelationLen   = 128
)

type correlationCtxKey struct{}

// CorrelationID tags each request with an identifier taken from
// X-Correlation-ID or X-Request-ID, or a fresh UUID when neither is usable.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := cleanCorrelationID(c.Get(HeaderCorrelationID))
		if id == "" {
			id = cleanCorrelationID(c.Get(headerRequestID))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(correlationLocal, id)
		c.Set(HeaderCorrelationID, id)
		c.SetUserContext(context.WithValue(c.UserContext(), correlationCtxKey{}, id))
		return c.Next()
	}
}

// cleanCorrelationID drops values that would pollute structured logs.
func cleanCorrelationID(raw string) string {
	id := strings.TrimSpace(raw)
	if len(id) > maxCorrelationLen || strings.ContainsAny(id, "\r\n\t ") {
		return ""
	}
	return id
}

// CorrelationIDFromContext returns the identifier stored by CorrelationID.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationCtxKey{}).(string)
	return id
}

// GetCorrelationID returns the identifier bound to the request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(correlationLocal).(string); ok {
		return id
	}
	return CorrelationIDFromContext(c.UserContext())
}

// ContextWithCorrelation copies an identifier onto ctx. Blank ids leave ctx untouched.
func ContextWithCorrelation(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	id := strings.TrimSpace(correlationID)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationCtxKey{}, id)
}
