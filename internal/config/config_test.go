package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: appointd-test
mongo:
  uri: mongodb://localhost:27017
  database: appointd_test
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Mongo.ConnectTimeoutDur())
	assert.Equal(t, 3*time.Second, cfg.Mongo.PingTimeoutDur())
	assert.Equal(t, 8*time.Second, cfg.Mongo.OpTimeoutDur())
	assert.Equal(t, 5, cfg.Mongo.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Mongo.ReconnectIntervalDur())
	assert.Equal(t, 3, cfg.Mongo.ReconnectRetries)
	assert.Equal(t, "Africa/Kigali", cfg.Booking.Timezone)
	assert.Equal(t, 30*time.Second, cfg.Booking.SlotCacheTTLDur())
	assert.Equal(t, 10*time.Second, cfg.Email.SendTimeoutDur())
}

func TestLoadEnvExpansion(t *testing.T) {
	t.Setenv("TEST_MONGO_URI", "mongodb://db.internal:27017")

	path := writeConfig(t, `
mongo:
  uri: ${TEST_MONGO_URI}
  database: appointd
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db.internal:27017", cfg.Mongo.URI)
}

func TestValidateRejectsBadTimezone(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Booking.Timezone = "Mars/Olympus"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timezone")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
