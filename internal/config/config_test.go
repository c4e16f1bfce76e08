package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "https://discuit.net", cfg.DiscuitBaseURL)
	assert.Equal(t, "https://discuit.net", cfg.SiteURL)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DISCUIT_BASE_URL", "http://localhost:9000/")
	t.Setenv("DISCUIT_SITE_URL", "https://discuit.example")
	t.Setenv("DISCUIT_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:9000", cfg.DiscuitBaseURL)
	assert.Equal(t, "https://discuit.example", cfg.SiteURL)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 4000\nlog_file: /tmp/discuit-rss.log\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "/tmp/discuit-rss.log", cfg.Log.File)
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"port", "PORT", "70000"},
		{"base url scheme", "DISCUIT_BASE_URL", "ftp://discuit.net"},
		{"base url host", "DISCUIT_BASE_URL", "https://"},
		{"log level", "LOG_LEVEL", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := FromViper(viper.New())
			assert.Error(t, err)
		})
	}
}
