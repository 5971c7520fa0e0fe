package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/survey-go-api/internal/models"
)

// TokenConfig controls how access tokens are signed.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Expiry   time.Duration
}

// TokenIssuer signs HS256 access tokens understood by middleware.JWTProtected.
type TokenIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenIssuer constructs a token issuer. Expiry defaults to 24h.
func NewTokenIssuer(cfg TokenConfig) *TokenIssuer {
	if cfg.Expiry <= 0 {
		cfg.Expiry = 24 * time.Hour
	}
	return &TokenIssuer{cfg: cfg, now: time.Now}
}

// Issue signs a token for the user and returns it with its expiry.
func (t *TokenIssuer) Issue(user models.User) (string, time.Time, error) {
	if t.cfg.Secret == "" {
		return "", time.Time{}, errors.New("jwt secret not configured")
	}

	now := t.now().UTC()
	expiresAt := now.Add(t.cfg.Expiry)
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
	}
	if t.cfg.Issuer != "" {
		claims["iss"] = t.cfg.Issuer
	}
	if t.cfg.Audience != "" {
		claims["aud"] = t.cfg.Audience
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
