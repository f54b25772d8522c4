package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("JWT_SECRET", "  s3cret  ")

	cfg := LoadConfig()

	require.Equal(t, 8080, cfg.ServerPort)
	require.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, "none", cfg.MQ.Backend)
	require.Equal(t, "none", cfg.Storage.Backend)
	require.Equal(t, "memory", cfg.Verify.Backend)
	require.Equal(t, 5, cfg.Verify.Max)
	require.False(t, cfg.Database.UseSSL)
	require.False(t, cfg.Auth.AdminCreateProtected)
	require.Equal(t, 30, cfg.Auth.IPRatePerMinute)
	require.Equal(t, "US", cfg.Auth.PhoneRegion)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_USE_SSL", "true")
	t.Setenv("AUTH_LOGIN_TOKEN_TTL", "72h")
	t.Setenv("VERIFY_LIMIT_WINDOW", "60")
	t.Setenv("MQ_BACKEND", "RabbitMQ")

	cfg := LoadConfig()

	require.Equal(t, 9090, cfg.ServerPort)
	require.True(t, cfg.Database.UseSSL)
	require.Equal(t, 72*time.Hour, cfg.Auth.LoginTokenTTL)
	require.Equal(t, time.Minute, cfg.Verify.Window)
	require.Equal(t, "rabbitmq", cfg.MQ.Backend)
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")
	require.Equal(t, 5432, getEnvInt("DB_PORT", 5432))
}
