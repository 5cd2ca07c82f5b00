package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vipps-adapter/internal/config"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/host",
		"REDIS_URL":    "redis://localhost:6379/0",
		"JWT_SECRET":   "secret",
	}
}

func TestLoadDefaults(t *testing.T) {
	env := baseEnv()
	for _, key := range []string{"PORT", "APP_ENV", "IDEMPOTENCY_TTL", "INTENT_RATE_PERIOD", "INTENT_RATE_LIMIT", "OBS_METRICS_NAMESPACE", "OBS_ENABLE_PROMETHEUS", "OBS_ENABLE_TRACING"} {
		env[key] = ""
	}
	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	require.Equal(t, time.Minute, cfg.IntentRatePeriod)
	require.Equal(t, int64(60), cfg.IntentRateLimit)
	require.Equal(t, "vipps_adapter", cfg.MetricsNamespace)
	require.True(t, cfg.MetricsEnabled)
	require.True(t, cfg.TracingEnabled)
}

func TestLoadOverrides(t *testing.T) {
	env := baseEnv()
	env["PORT"] = "9090"
	env["APP_ENV"] = "production"
	env["CORS_ALLOWED_ORIGINS"] = "https://shop.example.no, https://admin.example.no"
	env["IDEMPOTENCY_TTL"] = "1h"
	env["INTENT_RATE_LIMIT"] = "10"
	env["OBS_ENABLE_PROMETHEUS"] = "false"

	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.Equal(t, "production", cfg.AppEnv)
	require.Equal(t, []string{"https://shop.example.no", "https://admin.example.no"}, cfg.CORSAllowedOrigins)
	require.Equal(t, time.Hour, cfg.IdempotencyTTL)
	require.Equal(t, int64(10), cfg.IntentRateLimit)
	require.False(t, cfg.MetricsEnabled)
}

func TestLoadRequiredVariables(t *testing.T) {
	for _, missing := range []string{"DATABASE_URL", "REDIS_URL", "JWT_SECRET"} {
		env := baseEnv()
		env[missing] = ""
		_, err := config.LoadForTests(env)
		require.Error(t, err, missing)
	}
}
