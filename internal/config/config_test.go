package config_test

import (
	"testing"
	"time"

	"mandale/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_jwt_secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, time.Second, cfg.PaymentDelay)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.False(t, cfg.SeedDemoData)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("PAYMENT_DELAY", "250ms")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("SEED_DEMO_DATA", "true")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, 250*time.Millisecond, cfg.PaymentDelay)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.True(t, cfg.SeedDemoData)
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &config.Config{JWTSecret: "x", DatabaseDriver: "mysql", JWTTTL: time.Hour}
	assert.ErrorContains(t, cfg.Validate(), "unsupported DATABASE_DRIVER")
}
