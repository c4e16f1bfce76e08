package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/blackmichael/discuit-rss/internal/logger"
)

// Configuration keys. Each is also read from the upper-cased environment variable.
const (
	KeyPort       = "port"
	KeyBaseURL    = "discuit_base_url"
	KeySiteURL    = "discuit_site_url"
	KeyTimeout    = "discuit_timeout"
	KeyUserAgent  = "discuit_user_agent"
	KeyLogLevel   = "log_level"
	KeyLogFile    = "log_file"
	KeyLogMaxSize = "log_max_size"
	KeyLogBackups = "log_max_backups"
	KeyLogMaxAge  = "log_max_age"
	KeyConfigFile = "config_file"
)

// Config holds all configuration for the application.
type Config struct {
	// Port is the HTTP server port.
	Port int

	// DiscuitBaseURL is the root of the Discuit API (without /api).
	DiscuitBaseURL string

	// SiteURL is the public Discuit site that feed links point to.
	SiteURL string

	// UpstreamTimeout bounds each request to the Discuit API.
	UpstreamTimeout time.Duration

	// UserAgent is sent with every upstream request.
	UserAgent string

	Log logger.Config
}

// Load reads configuration from a .env file (if present), an optional YAML
// file named by CONFIG_FILE, and environment variables, in increasing order
// of precedence.
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith is Load with a caller-supplied viper instance, e.g. one with
// command-line flags already bound.
func LoadWith(v *viper.Viper) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromViper(v)
}

// FromViper builds a Config from v after installing defaults and environment
// bindings on it.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault(KeyPort, 3000)
	v.SetDefault(KeyBaseURL, "https://discuit.net")
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyUserAgent, "discuit-rss/1.0")
	v.SetDefault(KeyLogLevel, "info")
	v.AutomaticEnv()

	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:            v.GetInt(KeyPort),
		DiscuitBaseURL:  strings.TrimRight(v.GetString(KeyBaseURL), "/"),
		SiteURL:         strings.TrimRight(v.GetString(KeySiteURL), "/"),
		UpstreamTimeout: v.GetDuration(KeyTimeout),
		UserAgent:       v.GetString(KeyUserAgent),
		Log: logger.Config{
			Level:      v.GetString(KeyLogLevel),
			File:       v.GetString(KeyLogFile),
			MaxSize:    v.GetInt(KeyLogMaxSize),
			MaxBackups: v.GetInt(KeyLogBackups),
			MaxAge:     v.GetInt(KeyLogMaxAge),
		},
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = cfg.DiscuitBaseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	if err := validateHTTPURL(c.DiscuitBaseURL); err != nil {
		return fmt.Errorf("invalid DISCUIT_BASE_URL: %w", err)
	}
	if err := validateHTTPURL(c.SiteURL); err != nil {
		return fmt.Errorf("invalid DISCUIT_SITE_URL: %w", err)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("invalid DISCUIT_TIMEOUT: %s", c.UpstreamTimeout)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
