package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the runtime settings of the API.
type Config struct {
	AppPort string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	RabbitMQURL string

	RedisURL       string
	IdempotencyTTL time.Duration

	PaymentDelay          time.Duration
	ShippingWebhookSecret string

	CORSAllowOrigins string
	SeedDemoData     bool
}

// Load reads the configuration from the environment, after loading an
// optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment only")
	}

	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "mandale.db")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
	v.SetDefault("PAYMENT_DELAY", "1s")
	v.SetDefault("SHIPPING_WEBHOOK_SECRET", "")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("SEED_DEMO_DATA", false)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:               v.GetString("APP_PORT"),
		DatabaseDriver:        v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:           v.GetString("DATABASE_DSN"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		JWTTTL:                v.GetDuration("JWT_TTL"),
		RabbitMQURL:           v.GetString("RABBITMQ_URL"),
		RedisURL:              v.GetString("REDIS_URL"),
		IdempotencyTTL:        v.GetDuration("IDEMPOTENCY_TTL"),
		PaymentDelay:          v.GetDuration("PAYMENT_DELAY"),
		ShippingWebhookSecret: v.GetString("SHIPPING_WEBHOOK_SECRET"),
		CORSAllowOrigins:      v.GetString("CORS_ALLOW_ORIGINS"),
		SeedDemoData:          v.GetBool("SEED_DEMO_DATA"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.PaymentDelay < 0 {
		return fmt.Errorf("PAYMENT_DELAY must not be negative")
	}
	return nil
}
