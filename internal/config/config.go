package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName               string
	AppEnv                string
	AppPort               string
	DatabaseURL           string
	RedisURL              string
	NATSURL               string
	JWTSecret             string
	JWTIssuer             string
	JWTAudience           string
	JWTExpiry             time.Duration
	DashboardCacheTTL     time.Duration
	RealtimeChannel       string
	NotificationKeepAlive time.Duration
	AuthRateLimit         int
	AuthRateWindow        time.Duration
	CORSOrigins           string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SURVEY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Survey API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("jwt.issuer", "survey-api")
	v.SetDefault("jwt.audience", "survey-clients")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("realtime.channel", "survey")
	v.SetDefault("notifications.keepalive", "30s")
	v.SetDefault("auth.rate_limit", 20)
	v.SetDefault("auth.rate_window", "1m")
	v.SetDefault("cors.origins", "*")

	jwtExpiry, err := parseDuration(v, "jwt.expiry", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := parseDuration(v, "dashboard.cache_ttl", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}
	keepAlive, err := parseDuration(v, "notifications.keepalive", 30*time.Second)
	if err != nil {
		return Config{}, err
	}
	rateWindow, err := parseDuration(v, "auth.rate_window", time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:               v.GetString("app.name"),
		AppEnv:                v.GetString("app.env"),
		AppPort:               v.GetString("app.port"),
		DatabaseURL:           v.GetString("database.url"),
		RedisURL:              v.GetString("redis.url"),
		NATSURL:               v.GetString("nats.url"),
		JWTSecret:             v.GetString("jwt.secret"),
		JWTIssuer:             v.GetString("jwt.issuer"),
		JWTAudience:           v.GetString("jwt.audience"),
		JWTExpiry:             jwtExpiry,
		DashboardCacheTTL:     cacheTTL,
		RealtimeChannel:       v.GetString("realtime.channel"),
		NotificationKeepAlive: keepAlive,
		AuthRateLimit:         v.GetInt("auth.rate_limit"),
		AuthRateWindow:        rateWindow,
		CORSOrigins:           v.GetString("cors.origins"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.AuthRateLimit <= 0 {
		cfg.AuthRateLimit = 20
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if parsed <= 0 {
		return fallback, nil
	}
	return parsed, nil
}
