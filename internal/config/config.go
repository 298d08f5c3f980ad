package config

import (
	"encoding/base64"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration
type Config struct {
	// Environment
	AppEnv   string `env:"APP_ENV" envDefault:"production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Database
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Redis (sessions + rate limiting)
	RedisURL string `env:"REDIS_URL,required"`

	// Session tokens
	SessionHS256Secret     string `env:"SESSION_HS256_SECRET,required"` // Base64-encoded HMAC secret
	SessionIssuer          string `env:"SESSION_ISSUER" envDefault:"khidmat-api"`
	SessionTTLMinutes      int    `env:"SESSION_TTL_MINUTES" envDefault:"720"`     // token lifetime
	SessionIdleTTLMinutes  int    `env:"SESSION_IDLE_TTL_MINUTES" envDefault:"60"` // redis sliding window
	SessionClockSkewSecond int    `env:"SESSION_CLOCK_SKEW_SECONDS" envDefault:"60"`

	// OpenTelemetry
	OTELEnabled          bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELExporterEndpoint string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTELServiceName      string  `env:"OTEL_SERVICE_NAME" envDefault:"khidmat-api"`
	OTELSamplingRatio    float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"0.1"`

	// Server
	Port string `env:"PORT" envDefault:"3004"`

	// Rate Limiting
	RateLimitPerPrincipalPerMin int `env:"RATE_LIMIT_PER_PRINCIPAL_PER_MIN" envDefault:"60"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate performs custom validation on the configuration
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if _, err := c.SessionSecretBytes(); err != nil {
		return err
	}

	if c.SessionTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be positive")
	}

	if c.SessionIdleTTLMinutes <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL_MINUTES must be positive")
	}

	if c.SessionClockSkewSecond < 0 {
		return fmt.Errorf("SESSION_CLOCK_SKEW_SECONDS must be non-negative")
	}

	if c.OTELSamplingRatio < 0 || c.OTELSamplingRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be between 0 and 1")
	}

	if c.RateLimitPerPrincipalPerMin <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_PRINCIPAL_PER_MIN must be positive")
	}

	return nil
}

// SessionSecretBytes decodes the Base64 HMAC secret and enforces the
// 256-bit minimum.
func (c *Config) SessionSecretBytes() ([]byte, error) {
	secret, err := base64.StdEncoding.DecodeString(c.SessionHS256Secret)
	if err != nil {
		return nil, fmt.Errorf("SESSION_HS256_SECRET must be valid Base64: %w", err)
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("SESSION_HS256_SECRET decoded bytes must be at least 32 bytes (256 bits), got %d", len(secret))
	}
	return secret, nil
}

// TelemetryEnabled reports whether OTEL export should be initialized
func (c *Config) TelemetryEnabled() bool {
	return c.OTELEnabled && c.OTELExporterEndpoint != ""
}
