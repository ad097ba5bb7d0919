package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-dev-secret")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenExpiry)
	assert.Equal(t, 300*time.Second, cfg.Auth.OTPTTL)
	assert.Equal(t, 10*time.Minute, cfg.Auth.ResetTokenTTL)
	assert.Equal(t, "ghostofweb", cfg.Master.Username)
	assert.Contains(t, cfg.Server.AllowedOrigins, "http://localhost:5173")
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingDBPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-dev-secret")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_WeakJWTSecretInProduction(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("ENV", "production")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DurationOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OTP_TTL", "2m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Auth.OTPTTL)
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "pw", Name: "portfolio", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=postgres password=pw dbname=portfolio sslmode=disable", c.DSN())
}
