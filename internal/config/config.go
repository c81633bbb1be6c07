package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	API struct {
		BaseURL        string `yaml:"base_url" toml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds" toml:"timeout_seconds"`
		Mock           bool   `yaml:"mock" toml:"mock"`
	} `yaml:"api" toml:"api"`
	Server struct {
		ListenAddr      string `yaml:"listen_addr" toml:"listen_addr"`
		SessionKey      string `yaml:"session_key" toml:"session_key"`
		SecureCookies   bool   `yaml:"secure_cookies" toml:"secure_cookies"`
		PageIdleMinutes int    `yaml:"page_idle_minutes" toml:"page_idle_minutes"`
		MaxPages        int    `yaml:"max_pages" toml:"max_pages"`
	} `yaml:"server" toml:"server"`
	Catalog struct {
		File string `yaml:"file" toml:"file"`
	} `yaml:"catalog" toml:"catalog"`
	Schedule struct {
		CatalogCron string `yaml:"catalog_cron" toml:"catalog_cron"`
		RotateCron  string `yaml:"rotate_cron" toml:"rotate_cron"`
		SweepCron   string `yaml:"sweep_cron" toml:"sweep_cron"`
	} `yaml:"schedule" toml:"schedule"`
	Logging struct {
		Dir  string `yaml:"dir" toml:"dir"`
		Keep int    `yaml:"keep" toml:"keep"`
	} `yaml:"logging" toml:"logging"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" toml:"sqlite_path"`
	} `yaml:"database" toml:"database"`
	Telemetry struct {
		Endpoint string `yaml:"endpoint" toml:"endpoint"`
		Insecure bool   `yaml:"insecure" toml:"insecure"`
	} `yaml:"telemetry" toml:"telemetry"`
	Proxy string `yaml:"proxy" toml:"proxy"`
}

// Load reads config from a YAML or TOML file (by extension), then applies
// environment variable overrides and defaults. A missing file is allowed.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			if _, err := toml.Decode(string(data), cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Environment variable overrides
	if v := os.Getenv("API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("API_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("API_TIMEOUT_SECONDS: %w", err)
		}
		cfg.API.TimeoutSeconds = n
	}
	if v := os.Getenv("API_MOCK"); v != "" {
		cfg.API.Mock = v == "true" || v == "1"
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("SESSION_KEY"); v != "" {
		cfg.Server.SessionKey = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := os.Getenv("CATALOG_CRON"); v != "" {
		cfg.Schedule.CatalogCron = v
	}
	if v := os.Getenv("CATALOG_FILE"); v != "" {
		cfg.Catalog.File = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Telemetry.Endpoint = v
	}

	// Defaults
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8000"
	}
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = 15
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.PageIdleMinutes == 0 {
		cfg.Server.PageIdleMinutes = 30
	}
	if cfg.Server.MaxPages == 0 {
		cfg.Server.MaxPages = 1000
	}
	if cfg.Schedule.CatalogCron == "" {
		cfg.Schedule.CatalogCron = "0 */15 * * * *"
	}
	if cfg.Schedule.RotateCron == "" {
		cfg.Schedule.RotateCron = "0 0 0 * * *"
	}
	if cfg.Schedule.SweepCron == "" {
		cfg.Schedule.SweepCron = "0 * * * * *"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Keep == 0 {
		cfg.Logging.Keep = 7
	}

	return cfg, nil
}

// Validate checks that all required fields are sane.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("api.timeout_seconds must be positive")
	}
	if c.Server.PageIdleMinutes < 0 {
		return fmt.Errorf("server.page_idle_minutes must be positive")
	}
	if c.Server.MaxPages < 0 {
		return fmt.Errorf("server.max_pages must be positive")
	}
	if k := len(c.Server.SessionKey); k != 0 && k < 32 {
		return fmt.Errorf("server.session_key must be at least 32 bytes")
	}
	if c.Proxy != "" {
		if _, err := url.Parse(c.Proxy); err != nil {
			return fmt.Errorf("proxy: %w", err)
		}
	}
	return nil
}

// APITimeout is the per-request upstream timeout.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// PageIdleTTL is how long an unused page is kept.
func (c *Config) PageIdleTTL() time.Duration {
	return time.Duration(c.Server.PageIdleMinutes) * time.Minute
}
