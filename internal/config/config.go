// Package config loads redline's configuration file and applies defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound indicates no config file was found in the standard search locations.
var ErrConfigNotFound = errors.New("configuration file not found")

// Config is the root configuration structure.
type Config struct {
	// Workspace is the root directory all file paths resolve against.
	Workspace string `yaml:"workspace,omitempty"`

	// History configures the batch history store.
	History HistoryConfig `yaml:"history,omitempty"`

	// Server configures the HTTP API.
	Server ServerConfig `yaml:"server,omitempty"`

	// Shell configures shell command execution.
	Shell ShellConfig `yaml:"shell,omitempty"`
}

// HistoryConfig controls where applied batches are recorded.
type HistoryConfig struct {
	// Path to the SQLite database file, relative to the workspace root.
	Path string `yaml:"path,omitempty"`

	// Disabled turns off history recording entirely.
	Disabled bool `yaml:"disabled,omitempty"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Address string `yaml:"address,omitempty"`
}

// ShellConfig holds shell execution settings.
type ShellConfig struct {
	// Timeout is a Go duration string bounding each command, e.g. "2m".
	Timeout string `yaml:"timeout,omitempty"`
}

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		Workspace: ".",
		History: HistoryConfig{
			Path: ".redline.db",
		},
		Server: ServerConfig{
			Address: "127.0.0.1:8787",
		},
		Shell: ShellConfig{
			Timeout: "2m",
		},
	}
}

// ShellTimeout parses the shell timeout. Call Validate first; this panics on
// malformed durations.
func (c Config) ShellTimeout() time.Duration {
	d, err := time.ParseDuration(c.Shell.Timeout)
	if err != nil {
		panic(fmt.Sprintf("config: invalid shell timeout %q", c.Shell.Timeout))
	}
	return d
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration file: %w", err)
	}

	if c.Workspace == "" {
		return fmt.Errorf("workspace must not be empty")
	}

	if !c.History.Disabled && c.History.Path == "" {
		return fmt.Errorf("history.path must not be empty unless history is disabled")
	}

	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}

	if c.Shell.Timeout != "" {
		d, err := time.ParseDuration(c.Shell.Timeout)
		if err != nil {
			return fmt.Errorf("shell.timeout: invalid duration %q", c.Shell.Timeout)
		}
		if d <= 0 {
			return fmt.Errorf("shell.timeout: duration must be positive, got %q", c.Shell.Timeout)
		}
	}

	return nil
}

// Load resolves and loads the configuration. When explicitPath is empty the
// standard search locations are tried; a missing file is not an error and
// yields the defaults.
func Load(explicitPath string) (Config, error) {
	cfg, _, err := LoadWithPath(explicitPath)
	return cfg, err
}

// LoadWithPath loads the configuration and returns the resolved config file
// path. The path is empty when no file was found and defaults were used.
func LoadWithPath(explicitPath string) (Config, string, error) {
	var configPath string

	if explicitPath != "" {
		configPath = explicitPath
		if _, err := os.Stat(configPath); err != nil {
			if os.IsNotExist(err) {
				return Config{}, "", fmt.Errorf("specified config file does not exist: %s", configPath)
			}
			return Config{}, "", fmt.Errorf("cannot access config file %s: %w", configPath, err)
		}
	} else {
		found, err := findConfigFile()
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				return Default(), "", nil
			}
			return Config{}, "", err
		}
		configPath = found
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, "", fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return Config{}, "", fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}

	return cfg, configPath, nil
}

// findConfigFile searches for configuration files in the expected locations.
func findConfigFile() (string, error) {
	if path := os.Getenv("REDLINE_CONFIG_FILE"); path != "" {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return "", fmt.Errorf("REDLINE_CONFIG_FILE points to a missing file: %s", path)
			}
			return "", fmt.Errorf("cannot access REDLINE_CONFIG_FILE %s: %w", path, err)
		}
		return path, nil
	}

	// Check current directory first
	if _, err := os.Stat(".redline.yaml"); err == nil {
		return ".redline.yaml", nil
	}

	// Check user config directory
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		path := filepath.Join(userConfigDir, "redline", "redline.yaml")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", ErrConfigNotFound
}

// parse unmarshals YAML config data over the defaults, so omitted fields
// keep their default values. Environment variables are expanded in the raw
// content before parsing, supporting both $VAR and ${VAR} syntax.
func parse(data []byte) (Config, error) {
	expandedData := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing YAML config: %w", err)
	}
	return cfg, nil
}
