package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "LOG_LEVEL", "DEBUG", "MAX_FLIGHTS_PER_PAGE", "SCHEDULE_GRACE_MINUTES", "READ_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 100, cfg.MaxFlightsPerPage)
	assert.Equal(t, 30*time.Minute, cfg.ScheduleGrace)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("DEBUG", "true")
	t.Setenv("MAX_FLIGHTS_PER_PAGE", "25")
	t.Setenv("SCHEDULE_GRACE_MINUTES", "5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 25, cfg.MaxFlightsPerPage)
	assert.Equal(t, 5*time.Minute, cfg.ScheduleGrace)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "STORE_DRIVER")
}

func TestLoadConfigRejectsNonPositivePageSize(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("MAX_FLIGHTS_PER_PAGE", "0")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "MAX_FLIGHTS_PER_PAGE")
}

func TestMalformedNumbersFallBackToDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("MAX_FLIGHTS_PER_PAGE", "lots")
	t.Setenv("DEBUG", "maybe")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.MaxFlightsPerPage)
	assert.False(t, cfg.Debug)
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desk.env")
	require.NoError(t, os.WriteFile(path, []byte("REFERENCE_SEED_FILE=reference.yaml\n"), 0o600))
	t.Setenv("STORE_DRIVER", "")
	// Registered so the value godotenv sets is cleared after the test
	t.Setenv("REFERENCE_SEED_FILE", "")
	os.Unsetenv("REFERENCE_SEED_FILE")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "reference.yaml", cfg.ReferenceSeedFile)
}

func TestLoadConfigMissingEnvFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "load env files")
}
