package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"socialnet/config"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "MONGO_URL", "MONGO_DATABASE", "REDIS_HOST", "REDIS_PORT",
		"JWT_SECRET", "TOKEN_TTL_MINUTES", "RATE_LIMIT_PER_MINUTE", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := config.FromEnv()
	require.Equal(t, 5000, cfg.Port)
	require.Equal(t, "socialnet", cfg.MongoDatabase)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
	require.Equal(t, time.Hour, cfg.TokenTTL)
	require.Equal(t, 300, cfg.RateLimit)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("TOKEN_TTL_MINUTES", "15")
	t.Setenv("JWT_SECRET", "hunter2")

	cfg := config.FromEnv()
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "redis.internal:6380", cfg.RedisAddr)
	require.Equal(t, 15*time.Minute, cfg.TokenTTL)
	require.Equal(t, "hunter2", cfg.JWTSecret)
}
