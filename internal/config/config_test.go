package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, HotelProviderBooking, cfg.Provider.HotelProvider)
	assert.Equal(t, 2, cfg.Provider.MaxConcurrent)
	assert.Equal(t, "INR", cfg.Provider.Currency)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}, cfg.Provider.RetryDelays)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, RateLimit{RPS: 2, Burst: 4}, cfg.RateLimit.Serp)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HOTEL_PROVIDER", "Google")
	t.Setenv("SERP_API_KEY", "serp-key")
	t.Setenv("GOOGLE_API_KEY", "gemini-key")
	t.Setenv("FANOUT_MAX_CONCURRENT", "4")
	t.Setenv("PROVIDER_RETRY_DELAYS", "10ms, 20ms")
	t.Setenv("CACHE_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, HotelProviderGoogle, cfg.Provider.HotelProvider)
	assert.Equal(t, "serp-key", cfg.Serp.APIKey)
	assert.Equal(t, "gemini-key", cfg.LLM.APIKey)
	assert.Equal(t, 4, cfg.Provider.MaxConcurrent)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, cfg.Provider.RetryDelays)
	assert.True(t, cfg.Cache.Enabled)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("APIFY_API_KEY=from-file\nREDIS_PORT=6380\n"), 0o600))

	t.Setenv("REDIS_PORT", "6390")
	t.Setenv("APIFY_API_KEY", "")
	require.NoError(t, os.Unsetenv("APIFY_API_KEY"))

	cfg, err := Load("", envFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Apify.APIKey)
	assert.Equal(t, "6390", cfg.Cache.RedisPort)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("LLM_MODEL: gemini-1.5-pro\nREDIS_TTL: 1h\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-pro", cfg.LLM.Model)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"HOTEL_PROVIDER", "expedia"},
		{"FANOUT_MAX_CONCURRENT", "0"},
		{"PROVIDER_MAX_RETRIES", "-1"},
		{"PROVIDER_RETRY_DELAYS", "soon"},
		{"LOG_LEVEL", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
