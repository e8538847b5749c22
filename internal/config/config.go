package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Zuo-Peng/mda/internal/logging"
)

type Config struct {
	DumpPath  string `toml:"dump_path"` // a zip, or a directory holding zips
	Timezone  string `toml:"timezone"`
	DBPath    string `toml:"db_path"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	Viewer    string `toml:"viewer"`
}

// Load reads ~/.config/mda/config.toml over the defaults. A missing file is not an error.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return load(filepath.Join(home, ".config", "mda", "config.toml"), home, false)
}

// LoadFile reads an explicit config file, which must exist.
func LoadFile(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return load(path, home, true)
}

func load(cfgPath, home string, required bool) (*Config, error) {
	cfg := defaults(home)

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	} else if required {
		return nil, fmt.Errorf("config %s: %w", cfgPath, err)
	}

	// expand ~ in paths
	cfg.DumpPath = expandHome(cfg.DumpPath, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

func defaults(home string) *Config {
	viewer := os.Getenv("VIEWER")
	if viewer == "" {
		viewer = "xdg-open"
	}
	return &Config{
		DBPath:    filepath.Join(home, ".config", "mda", "mda.db"),
		LogLevel:  "info",
		LogFormat: "console",
		Viewer:    viewer,
	}
}

// Location resolves Timezone. An empty Timezone gives nil: times stay in UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// ExpandHome expands a leading ~/ against the user's home directory.
func ExpandHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return expandHome(path, home)
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
