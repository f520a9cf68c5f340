package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"MONGO_URI", "DB_NAME", "JWT_SECRET", "SESSION_TTL", "RESET_TOKEN_TTL", "REQUEST_TIMEOUT", "RABBIT_URL", "RESET_QUEUE", "PORT", "STORE_DRIVER", "LOG_LEVEL", "TIMEZONE", "REGISTRATION_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "carrete", cfg.DBName)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "password_reset_emails", cfg.ResetQueue)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.RegistrationEnabled)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL", "2")
	t.Setenv("REQUEST_TIMEOUT", "-3")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("REGISTRATION_ENABLED", "false")

	cfg := FromEnv()
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.False(t, cfg.RegistrationEnabled)
}

func TestValidate(t *testing.T) {
	cfg := Config{StoreDriver: DriverMongo}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
	assert.NotContains(t, err.Error(), "JWT_SECRET")

	cfg = Config{StoreDriver: DriverMemory}
	assert.NoError(t, cfg.Validate())

	cfg = Config{StoreDriver: "redis", JWTSecret: "s", Timezone: "Mars/Olympus"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
	assert.Contains(t, err.Error(), "TIMEZONE")
}

func TestValidateIdentity(t *testing.T) {
	err := Config{StoreDriver: DriverMemory}.ValidateIdentity()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	assert.NoError(t, Config{JWTSecret: "s"}.ValidateIdentity())
}
