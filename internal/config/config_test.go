package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(1000), cfg.Auth.InitialBalance)
	assert.Equal(t, int64(300), cfg.Auth.ReviewReward)
	assert.Equal(t, 5, cfg.Auth.MaxFailedLogins)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LockoutDuration)
	assert.Equal(t, "console", cfg.Mail.Provider)
	assert.False(t, cfg.Redis.CacheEnabled)
	assert.False(t, cfg.Redis.RateEnabled)
}

func TestLoad_ProdRejectsDefaultSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("MAIL_PROVIDER", "mailersend")
	t.Setenv("MAILERSEND_API_KEY", "key")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_ProdWithSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "release")
	t.Setenv("MAIL_PROVIDER", "mailersend")
	t.Setenv("MAILERSEND_API_KEY", "key")
	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("TOKEN_PEPPER", "a-real-pepper")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("JWT_ACCESS_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_TTL")
}

func TestLoad_UnknownMailProvider(t *testing.T) {
	t.Setenv("MAIL_PROVIDER", "pigeon")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RedisEnablesFeatures(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.True(t, cfg.Redis.CacheEnabled)
	assert.False(t, cfg.Redis.RateEnabled)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"https://a.io", "https://b.io"}, splitList(" https://a.io, ,https://b.io "))
	assert.Nil(t, splitList(""))
}
