// ABOUTME: lift configuration management.
// ABOUTME: TOML settings at the XDG config path, .env and environment overrides, store factories.

package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/harperreed/lift/internal/prefs"
	"github.com/harperreed/lift/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Environment variables that override the config file.
const (
	EnvDataDir  = "LIFT_DATA_DIR"
	EnvLogLevel = "LIFT_LOG_LEVEL"
)

// Config stores lift configuration.
type Config struct {
	// DataDir is the root directory for data storage. lift.db and the prefs/
	// directory live here. Supports ~ expansion. Defaults to ~/.local/share/lift.
	DataDir string `toml:"data_dir,omitempty"`

	// LogLevel is one of trace, debug, info, warn, error. Defaults to warn.
	LogLevel string `toml:"log_level,omitempty"`

	// LogFormat is "text" (default) or "json".
	LogFormat string `toml:"log_format,omitempty"`

	// LogFile sends logs to a rotating file instead of stderr.
	LogFile string `toml:"log_file,omitempty"`

	// EraseOnSchemaChange recreates the database when its schema version is
	// not the latest. Development use only.
	EraseOnSchemaChange bool `toml:"erase_on_schema_change,omitempty"`
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// DBPath returns the location of the SQLite database.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "lift.db")
}

// PrefsDir returns the location of the preference store.
func (c *Config) PrefsDir() string {
	return filepath.Join(c.GetDataDir(), "prefs")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStore opens and migrates the workout database.
func (c *Config) OpenStore(ctx context.Context) (*storage.DB, error) {
	return storage.Open(ctx, c.DBPath(), storage.Options{
		EraseOnSchemaChange: c.EraseOnSchemaChange,
	})
}

// OpenPrefs opens the preference store.
func (c *Config) OpenPrefs() (*prefs.Store, error) {
	return prefs.Open(c.PrefsDir(), logrus.WithField("component", "prefs"))
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "lift", "config.toml")
}

// Load reads config from disk. A .env file in the working directory is
// loaded first, then LIFT_DATA_DIR and LIFT_LOG_LEVEL override the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if _, err := toml.DecodeFile(GetConfigPath(), &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}
