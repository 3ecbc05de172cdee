package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("ENV", "local")
	t.Setenv("DB_SERVER", "localhost:3306")
	t.Setenv("DB_NAME", "investhub")
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "root")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("SMTP_FROM", "noreply@example.com")
	t.Setenv("SMTP_PASS", "pass")
	t.Setenv("REDIS_TYPE", "redis")
	t.Setenv("MINIO_ACCESS_KEY", "minioadmin")
	t.Setenv("MINIO_SECRET_KEY", "minioadmin")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "8080", cfg.HttpServer.Port)
	assert.Equal(t, 720*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.VerificationCodeTTL)
	assert.Equal(t, 5, cfg.Auth.VerificationMaxAttempts)
	assert.Equal(t, "verification.html", cfg.Email.Templates.Verification)
	assert.Equal(t, "kyc-documents", cfg.Storage.Bucket)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AUTH_SESSION_TTL", "1h")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HttpServer.AllowedOrigins)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	require.NoError(t, os.Unsetenv("DB_SERVER"))

	_, err := Load()
	assert.Error(t, err)
}
