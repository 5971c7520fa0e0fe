package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/utils"
)

// RequireUser rejects requests whose token carried no usable user identifier.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == 0 {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}
		return c.Next()
	}
}

// UserID returns the authenticated user id, or zero.
func UserID(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		switch id := v.(type) {
		case uint:
			return id
		case int:
			if id > 0 {
				return uint(id)
			}
		}
	}
	return 0
}

// UserRole returns the normalised role of the authenticated user.
func UserRole(c *fiber.Ctx) string {
	return normalizeRoleValue(c.Locals("user_role"))
}

// AuditActor resolves who is acting on this request for audit rows.
func AuditActor(c *fiber.Ctx) audit.Actor {
	return audit.ActorFromRequest(UserID(c), c.Get(fiber.HeaderXForwardedFor), c.Context().RemoteAddr().String())
}
