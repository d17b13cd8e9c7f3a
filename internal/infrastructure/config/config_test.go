package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"BRIDGE_APP_NAME":                 os.Getenv("BRIDGE_APP_NAME"),
		"BRIDGE_APP_ENV":                  os.Getenv("BRIDGE_APP_ENV"),
		"BRIDGE_APP_PORT":                 os.Getenv("BRIDGE_APP_PORT"),
		"BRIDGE_ODOO_ENDPOINT":            os.Getenv("BRIDGE_ODOO_ENDPOINT"),
		"BRIDGE_ODOO_DATABASE":            os.Getenv("BRIDGE_ODOO_DATABASE"),
		"BRIDGE_ODOO_USERNAME":            os.Getenv("BRIDGE_ODOO_USERNAME"),
		"BRIDGE_ODOO_PASSWORD":            os.Getenv("BRIDGE_ODOO_PASSWORD"),
		"BRIDGE_ODOO_TIMEOUT_SECONDS":     os.Getenv("BRIDGE_ODOO_TIMEOUT_SECONDS"),
		"BRIDGE_ODOO_SESSION_TTL_SECONDS": os.Getenv("BRIDGE_ODOO_SESSION_TTL_SECONDS"),
		"BRIDGE_ENRICH_NOTE_STRATEGY":     os.Getenv("BRIDGE_ENRICH_NOTE_STRATEGY"),
		"BRIDGE_LOG_LEVEL":                os.Getenv("BRIDGE_LOG_LEVEL"),
		"BRIDGE_TELEMETRY_SAMPLING_RATIO": os.Getenv("BRIDGE_TELEMETRY_SAMPLING_RATIO"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "webhook-bridge", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, 15, cfg.Odoo.TimeoutSeconds)
		assert.Equal(t, 300, cfg.Odoo.SessionTTLSeconds)
		assert.Equal(t, "auto", cfg.Enrich.NoteStrategy)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "console", cfg.Log.Format)
		assert.Equal(t, "stdout", cfg.Log.Output)
		assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodySize)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, "webhook-bridge", cfg.Telemetry.ServiceName)
	})

	t.Run("loads values from environment variables with BRIDGE prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("BRIDGE_APP_NAME", "test-bridge")
		os.Setenv("BRIDGE_APP_PORT", "9000")
		os.Setenv("BRIDGE_ODOO_ENDPOINT", "https://erp.test.local")
		os.Setenv("BRIDGE_ODOO_DATABASE", "testdb")
		os.Setenv("BRIDGE_ODOO_USERNAME", "integration@test.local")
		os.Setenv("BRIDGE_ODOO_PASSWORD", "testpass")
		os.Setenv("BRIDGE_ODOO_TIMEOUT_SECONDS", "30")
		os.Setenv("BRIDGE_ENRICH_NOTE_STRATEGY", "origin")
		os.Setenv("BRIDGE_LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-bridge", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "https://erp.test.local", cfg.Odoo.Endpoint)
		assert.Equal(t, "testdb", cfg.Odoo.Database)
		assert.Equal(t, "integration@test.local", cfg.Odoo.Username)
		assert.Equal(t, "testpass", cfg.Odoo.Password)
		assert.Equal(t, 30, cfg.Odoo.TimeoutSeconds)
		assert.Equal(t, "origin", cfg.Enrich.NoteStrategy)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("rejects unknown note strategy", func(t *testing.T) {
		clearEnv()
		os.Setenv("BRIDGE_ENRICH_NOTE_STRATEGY", "newest")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "note_strategy")
	})

	t.Run("rejects out-of-range sampling ratio", func(t *testing.T) {
		clearEnv()
		os.Setenv("BRIDGE_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})

	t.Run("requires Odoo credentials in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("BRIDGE_APP_ENV", "production")
		os.Setenv("BRIDGE_ODOO_ENDPOINT", "https://erp.example.com")
		os.Setenv("BRIDGE_ODOO_DATABASE", "erp")
		os.Setenv("BRIDGE_ODOO_USERNAME", "integration@example.com")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "odoo.password")
	})

	t.Run("rejects plain http endpoint in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("BRIDGE_APP_ENV", "production")
		os.Setenv("BRIDGE_ODOO_ENDPOINT", "http://erp.example.com")
		os.Setenv("BRIDGE_ODOO_DATABASE", "erp")
		os.Setenv("BRIDGE_ODOO_USERNAME", "integration@example.com")
		os.Setenv("BRIDGE_ODOO_PASSWORD", "secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "https")
	})
}
