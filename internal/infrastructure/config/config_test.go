package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Empty(t, cfg.Server.AllowedOrigins)

	// Proxy config
	assert.Empty(t, cfg.Proxy.Origin)
	assert.Equal(t, "allow-forms", cfg.Proxy.Sandbox)

	// Action config
	assert.Equal(t, 30*time.Second, cfg.Actions.Timeout)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 50, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 100, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadOrDefault(t *testing.T) {
	// Should return default when no env vars set
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"ALLOWED_ORIGINS":    "http://localhost:5173,https://glint.example",
		"PROXY_ORIGIN":       "https://proxy.glint.example",
		"PROXY_SANDBOX":      "allow-forms allow-popups",
		"ACTION_TIMEOUT":     "10s",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
	}

	for key, value := range envVars {
		err := os.Setenv(key, value)
		require.NoError(t, err)
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	// Verify server config
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, []string{"http://localhost:5173", "https://glint.example"}, cfg.Server.AllowedOrigins)

	// Verify proxy config
	assert.Equal(t, "https://proxy.glint.example", cfg.Proxy.Origin)
	assert.Equal(t, "allow-forms allow-popups", cfg.Proxy.Sandbox)

	// Verify action config
	assert.Equal(t, 10*time.Second, cfg.Actions.Timeout)

	// Verify logging config
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	// Verify rate limit config
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	err := os.Setenv("PORT", "3000")
	require.NoError(t, err)
	defer os.Unsetenv("PORT")

	err = os.Setenv("LOG_LEVEL", "warn")
	require.NoError(t, err)
	defer os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	require.NoError(t, err)

	// Verify overridden values
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Verify default values still apply
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 30*time.Second, cfg.Actions.Timeout)
	assert.Equal(t, "allow-forms", cfg.Proxy.Sandbox)
}

func TestProxyConfig(t *testing.T) {
	tests := []struct {
		name        string
		origin      string
		sandbox     string
		wantOrigin  string
		wantSandbox string
	}{
		{
			name:        "default values",
			origin:      "",
			sandbox:     "",
			wantOrigin:  "",
			wantSandbox: "allow-forms",
		},
		{
			name:        "custom origin",
			origin:      "https://proxy.example",
			sandbox:     "",
			wantOrigin:  "https://proxy.example",
			wantSandbox: "allow-forms",
		},
		{
			name:        "custom sandbox",
			origin:      "",
			sandbox:     "allow-forms allow-modals",
			wantOrigin:  "",
			wantSandbox: "allow-forms allow-modals",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("PROXY_ORIGIN")
			os.Unsetenv("PROXY_SANDBOX")

			if tt.origin != "" {
				err := os.Setenv("PROXY_ORIGIN", tt.origin)
				require.NoError(t, err)
				defer os.Unsetenv("PROXY_ORIGIN")
			}
			if tt.sandbox != "" {
				err := os.Setenv("PROXY_SANDBOX", tt.sandbox)
				require.NoError(t, err)
				defer os.Unsetenv("PROXY_SANDBOX")
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantOrigin, cfg.Proxy.Origin)
			assert.Equal(t, tt.wantSandbox, cfg.Proxy.Sandbox)
		})
	}
}

func TestActionTimeoutParsing(t *testing.T) {
	err := os.Setenv("ACTION_TIMEOUT", "2m")
	require.NoError(t, err)
	defer os.Unsetenv("ACTION_TIMEOUT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Actions.Timeout)
}
