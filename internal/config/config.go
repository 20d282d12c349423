// Package config loads and saves the tarwrap settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mcdonaldj/tarwrap/internal/logging"
	"github.com/mcdonaldj/tarwrap/internal/tarfmt"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// TarPath is the tar binary to run; a bare name is looked up on PATH.
	TarPath string `yaml:"tar_path"`
	// Dialect names the output dialect of TarPath, or "auto".
	Dialect  string `yaml:"dialect"`
	LogLevel string `yaml:"log_level"`
	// Verify turns on the post-operation check for every create and extract.
	Verify bool `yaml:"verify"`
}

func DefaultConfig() (*Config, error) {
	return &Config{
		TarPath:  "tar",
		Dialect:  "auto",
		LogLevel: logging.DefaultLevel,
	}, nil
}

// ConfigPath returns the settings file location under the XDG config home.
func ConfigPath() (string, error) {
	if xdg.ConfigHome == "" {
		return "", fmt.Errorf("no config home directory")
	}
	return filepath.Join(xdg.ConfigHome, "tarwrap", "config.yaml"), nil
}

// Load reads the settings file. A missing file yields the defaults.
func Load() (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields that have a closed set of values.
func (c *Config) Validate() error {
	if c.TarPath == "" {
		return fmt.Errorf("tar_path must not be empty")
	}
	if _, err := tarfmt.ByName(c.Dialect, ""); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ResolveDialect returns the configured dialect, detecting it from goos
// when set to "auto".
func (c *Config) ResolveDialect(goos string) (tarfmt.Dialect, error) {
	return tarfmt.ByName(c.Dialect, goos)
}
