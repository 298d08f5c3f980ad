package config

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		AppEnv:                      "test",
		LogLevel:                    "info",
		DatabaseURL:                 "postgres://localhost:5432/khidmat",
		RedisURL:                    "redis://localhost:6379",
		SessionHS256Secret:          base64.StdEncoding.EncodeToString(make([]byte, 32)),
		SessionIssuer:               "khidmat-api",
		SessionTTLMinutes:           720,
		SessionIdleTTLMinutes:       60,
		SessionClockSkewSecond:      60,
		OTELSamplingRatio:           0.1,
		Port:                        "3004",
		RateLimitPerPrincipalPerMin: 60,
	}
}

func TestConfig_Validate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_MissingDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""

	assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")
}

func TestConfig_Validate_MissingRedisURL(t *testing.T) {
	cfg := validConfig()
	cfg.RedisURL = ""

	assert.ErrorContains(t, cfg.Validate(), "REDIS_URL")
}

func TestConfig_SessionSecretBytes(t *testing.T) {
	cfg := validConfig()

	secret, err := cfg.SessionSecretBytes()

	require.NoError(t, err)
	assert.Len(t, secret, 32)
}

func TestConfig_SessionSecretBytes_NotBase64(t *testing.T) {
	cfg := validConfig()
	cfg.SessionHS256Secret = "not-valid-base64!!!"

	_, err := cfg.SessionSecretBytes()

	assert.ErrorContains(t, err, "Base64")
}

func TestConfig_SessionSecretBytes_TooShort(t *testing.T) {
	cfg := validConfig()
	cfg.SessionHS256Secret = base64.StdEncoding.EncodeToString(make([]byte, 16))

	_, err := cfg.SessionSecretBytes()

	assert.ErrorContains(t, err, "32 bytes")
}

func TestConfig_Validate_NonPositiveTTL(t *testing.T) {
	cfg := validConfig()
	cfg.SessionTTLMinutes = 0

	assert.ErrorContains(t, cfg.Validate(), "SESSION_TTL_MINUTES")
}

func TestConfig_Validate_SamplingRatioOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.OTELSamplingRatio = 1.5

	assert.ErrorContains(t, cfg.Validate(), "OTEL_SAMPLING_RATIO")
}

func TestConfig_TelemetryEnabled(t *testing.T) {
	cfg := validConfig()

	assert.False(t, cfg.TelemetryEnabled(), "telemetry is opt-in")

	cfg.OTELEnabled = true
	cfg.OTELExporterEndpoint = "localhost:4317"
	assert.True(t, cfg.TelemetryEnabled())

	cfg.OTELExporterEndpoint = ""
	assert.False(t, cfg.TelemetryEnabled(), "no endpoint means no export")
}
