package cli

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvBaseURL overrides base_url from the config file.
const EnvBaseURL = "FAMILYCTL_BASE_URL"

// ErrInvalidConfig wraps every config validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the on-disk CLI configuration.
type Config struct {
	BaseURL   string `yaml:"base_url"`
	Timeout   string `yaml:"timeout"`
	StorePath string `yaml:"store_path"`
}

// DefaultConfigPath is ~/.config/familyctl/config.yaml.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "familyctl", "config.yaml")
}

func defaultConfig(configPath string) Config {
	return Config{
		BaseURL:   "http://localhost:3000",
		Timeout:   "30s",
		StorePath: filepath.Join(filepath.Dir(configPath), "session.json"),
	}
}

// LoadConfig reads path, fills defaults for missing keys and applies the
// environment override. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig(path)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var file Config
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if file.BaseURL != "" {
			cfg.BaseURL = file.BaseURL
		}
		if file.Timeout != "" {
			cfg.Timeout = file.Timeout
		}
		if file.StorePath != "" {
			cfg.StorePath = file.StorePath
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TimeoutDuration returns the parsed request timeout.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url %q must be an http(s) URL: %w", c.BaseURL, ErrInvalidConfig)
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return fmt.Errorf("timeout %q must be a positive duration: %w", c.Timeout, ErrInvalidConfig)
	}
	return nil
}

// Save writes the config as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
