package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocalDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	unsetenv(t, "PORT", "LOG_LEVEL", "LOG_FORMAT", "CORS_ALLOWED_ORIGINS", "FRONTEND_ORIGIN", "REPORT_CACHE_SIZE")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.CORS.AllowCredentials)
	assert.Equal(t, 512, cfg.Cache.Size)
}

func TestLoadFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://editor.example.com/ , ,https://admin.example.com")
	unsetenv(t, "LOG_FORMAT")

	cfg, err := Load([]string{"-port", "7070"})
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"https://editor.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Config{
		Port:         ":",
		MaxBodyBytes: 0,
		Log:          LogConfig{Level: "loud", Format: "xml"},
		CORS:         CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true},
		Cache:        CacheConfig{Size: -1},
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"port must not be empty",
		`unknown log level "loud"`,
		`unknown log format "xml"`,
		"max body bytes must be positive",
		"report cache size must not be negative",
		"wildcard CORS origin",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadRejectsAnyOriginWithCredentials(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	unsetenv(t, "PORT", "LOG_LEVEL", "LOG_FORMAT", "CORS_ALLOWED_ORIGINS", "CORS_ALLOW_CREDENTIALS")

	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wildcard CORS origin cannot be combined with credentials")

	t.Setenv("CORS_ALLOW_CREDENTIALS", "false")
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.CORS.AllowCredentials)
}

func TestNormalizePort(t *testing.T) {
	assert.Equal(t, ":8080", normalizePort("8080"))
	assert.Equal(t, ":8080", normalizePort(" :8080 "))
	assert.Equal(t, "", normalizePort(""))
}

// unsetenv removes keys for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unset %s: %v", k, err)
		}
	}
}
