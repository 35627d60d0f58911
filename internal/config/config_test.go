package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.Addr)
	assert.Equal(t, 16, cfg.App.Workers)
	assert.Equal(t, 30*time.Second, cfg.Telegram.PollTimeout)
	assert.Equal(t, 25.0, cfg.Telegram.SendRPS)
	assert.Equal(t, "https://www.googleapis.com/books/v1", cfg.Catalog.BaseURL)
	assert.Equal(t, 10, cfg.Catalog.MaxResults)
	assert.Equal(t, 15*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 2, cfg.Catalog.MaxRetries)
	assert.False(t, cfg.IsProduction())

	err = cfg.RequireTelegram()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN is required")
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_POLL_TIMEOUT", "45")
	t.Setenv("CATALOG_MAX_RESULTS", "20")
	t.Setenv("CATALOG_TIMEOUT", "3s")
	t.Setenv("WORKERS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 45*time.Second, cfg.Telegram.PollTimeout)
	assert.Equal(t, 20, cfg.Catalog.MaxResults)
	assert.Equal(t, 3*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 4, cfg.App.Workers)
	assert.NoError(t, cfg.RequireTelegram())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"CATALOG_MAX_RESULTS", "41", "CATALOG_MAX_RESULTS must be lte 40"},
		{"CATALOG_MAX_RESULTS", "ten", "CATALOG_MAX_RESULTS"},
		{"CATALOG_BASE_URL", "not a url", "CATALOG_BASE_URL must be a valid URL"},
		{"APP_ENV", "staging", "APP_ENV must be one of"},
		{"WORKERS", "0", "WORKERS must be gte 1"},
		{"CATALOG_TIMEOUT", "soon", "CATALOG_TIMEOUT"},
		{"CATALOG_LOOKUP_TTL", "0", "CATALOG_LOOKUP_TTL must be gt 0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
