package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("SURVEY_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Survey API", cfg.AppName)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, "survey-api", cfg.JWTIssuer)
	require.Equal(t, "survey-clients", cfg.JWTAudience)
	require.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	require.Equal(t, 5*time.Minute, cfg.DashboardCacheTTL)
	require.Equal(t, 20, cfg.AuthRateLimit)
	require.Equal(t, "*", cfg.CORSOrigins)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("SURVEY_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("SURVEY_JWT_SECRET", "test-secret")
	t.Setenv("SURVEY_DASHBOARD_CACHE_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestHTTPAddressKeepsColonPrefix(t *testing.T) {
	require.Equal(t, ":9000", Config{AppPort: ":9000"}.HTTPAddress())
}
