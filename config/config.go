// ABOUTME: Application configuration stored at the XDG data path
// ABOUTME: File values are overridden by .env and INSURETRACK_* environment variables
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

const (
	// AppName names the data directory and the charm KV database.
	AppName = "insuretrack"

	// ConfigFileName is the config file inside the data directory.
	ConfigFileName = "config.json"

	// DefaultCharmHost is the self-hosted charm server.
	DefaultCharmHost = "charm.2389.dev"

	DefaultWebPort           = 8080
	DefaultSchedulerInterval = 24 * time.Hour
	DefaultSMSDelay          = time.Second
)

// Storage backends.
const (
	BackendCharm  = "charm"
	BackendSQLite = "sqlite"
)

// Config holds every user-tunable setting.
type Config struct {
	// Backend is "charm" (default) or "sqlite".
	Backend string `json:"backend"`

	// DBPath is the SQLite file used by the sqlite backend and the SMS log.
	DBPath string `json:"db_path,omitempty"`

	CharmHost string `json:"charm_host,omitempty"`
	AutoSync  bool   `json:"auto_sync"`

	WebPort int `json:"web_port"`

	SchedulerInterval time.Duration `json:"scheduler_interval,omitempty"`
	SMSDelay          time.Duration `json:"sms_delay,omitempty"`

	LogLevel string `json:"log_level,omitempty"`
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Backend:           BackendCharm,
		DBPath:            filepath.Join(DataDir(), AppName+".db"),
		CharmHost:         DefaultCharmHost,
		AutoSync:          true,
		WebPort:           DefaultWebPort,
		SchedulerInterval: DefaultSchedulerInterval,
		SMSDelay:          DefaultSMSDelay,
		LogLevel:          "info",
	}
}

// DataDir is the XDG data directory for the app.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(DataDir(), ConfigFileName)
}

// Load reads the config at Path, then applies .env and environment overrides.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path. A missing or unparsable file yields defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			// Invalid config, start again from defaults
			cfg = Default()
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// .env is optional
	_ = godotenv.Load()

	applyEnvOverrides(cfg)
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.CharmHost == "" {
		c.CharmHost = d.CharmHost
	}
	if c.WebPort == 0 {
		c.WebPort = d.WebPort
	}
	if c.SchedulerInterval <= 0 {
		c.SchedulerInterval = d.SchedulerInterval
	}
	if c.SMSDelay < 0 {
		c.SMSDelay = d.SMSDelay
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Validate rejects settings the app cannot run with.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendCharm, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendCharm, BackendSQLite)
	}
	if c.WebPort < 1 || c.WebPort > 65535 {
		return fmt.Errorf("invalid web port %d", c.WebPort)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides:
// - INSURETRACK_BACKEND
// - INSURETRACK_DB_PATH
// - INSURETRACK_CHARM_HOST
// - INSURETRACK_AUTO_SYNC
// - INSURETRACK_WEB_PORT
// - INSURETRACK_SCHEDULER_INTERVAL
// - INSURETRACK_SMS_DELAY
// - INSURETRACK_LOG_LEVEL.
func applyEnvOverrides(cfg *Config) {
	if backend := os.Getenv("INSURETRACK_BACKEND"); backend != "" {
		cfg.Backend = strings.ToLower(backend)
	}
	if path := os.Getenv("INSURETRACK_DB_PATH"); path != "" {
		cfg.DBPath = path
	}
	if host := os.Getenv("INSURETRACK_CHARM_HOST"); host != "" {
		cfg.CharmHost = host
	}
	if autoSync := os.Getenv("INSURETRACK_AUTO_SYNC"); autoSync != "" {
		cfg.AutoSync = autoSync == "true" || autoSync == "1"
	}
	if port := os.Getenv("INSURETRACK_WEB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			cfg.WebPort = n
		}
	}
	if interval := os.Getenv("INSURETRACK_SCHEDULER_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			cfg.SchedulerInterval = d
		}
	}
	if delay := os.Getenv("INSURETRACK_SMS_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil {
			cfg.SMSDelay = d
		}
	}
	if level := os.Getenv("INSURETRACK_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
}

// Save writes the config to Path.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config to path with restricted permissions.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
