package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/survey-go-api/internal/utils"
)

// JWTConfig describes how bearer tokens are verified.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	// RequireUser rejects valid tokens that carry no user identifier.
	RequireUser bool
}

// accessClaims mirrors the claims written by the token issuer.
type accessClaims struct {
	jwt.RegisteredClaims
	UserID   uint   `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// userID prefers the numeric subject and falls back to the user_id claim.
func (c accessClaims) userID() uint {
	if parsed, err := strconv.ParseUint(c.Subject, 10, 64); err == nil && parsed > 0 {
		return uint(parsed)
	}
	return c.UserID
}

// JWTProtected validates HS256 bearer tokens and exposes user_id, user_role
// and username through fiber locals.
func JWTProtected(cfg JWTConfig) fiber.Handler {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		options = append(options, jwt.WithAudience(cfg.Audience))
	}
	parser := jwt.NewParser(options...)
	key := []byte(cfg.Secret)

	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		var claims accessClaims
		if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		}); err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		if id := claims.userID(); id > 0 {
			c.Locals("user_id", id)
		}
		if role := strings.ToLower(strings.TrimSpace(claims.Role)); role != "" {
			c.Locals("user_role", role)
		}
		if claims.Username != "" {
			c.Locals("username", claims.Username)
		}

		if cfg.RequireUser && UserID(c) == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		return c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, bool) {
	const scheme = "bearer "
	header = strings.TrimSpace(header)
	if len(header) <= len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", false
	}
	token := strings.TrimSpace(header[len(scheme):])
	return token, token != ""
}
