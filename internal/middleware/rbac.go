package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/survey-go-api/internal/utils"
)

// RequireRole lets the request through only when the caller's role is one of roles.
// Anonymous callers get 401 rather than 403.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		if role = strings.ToLower(strings.TrimSpace(role)); role != "" {
			allowed[role] = true
		}
	}

	return func(c *fiber.Ctx) error {
		role := UserRole(c)
		if role == "" && UserID(c) == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if !allowed[role] {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	default:
		return strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
	}
}
