// Package config resolves the tasuki configuration: a TOML file under the
// user config directory, environment overrides, and per-backend defaulting.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/zachfleeman/tasuki/domain"
)

// Config aggregates all runtime settings.
type Config struct {
	Logger   LoggerConfig   `toml:"logger"`
	Backends BackendsConfig `toml:"backends"`
}

type LoggerConfig struct {
	Level    string `toml:"level"`
	Encoding string `toml:"encoding"`
}

type BackendsConfig struct {
	Local    LocalConfig    `toml:"local"`
	Obsidian ObsidianConfig `toml:"obsidian"`
}

type LocalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type ObsidianConfig struct {
	Enabled       bool     `toml:"enabled"`
	VaultPath     string   `toml:"vault_path"`
	Folders       []string `toml:"folders"`
	IgnoreFolders []string `toml:"ignore_folders"`
	InboxFile     string   `toml:"inbox_file"`
}

// Load reads the config file (optionally overridden by TASUKI_CONFIG and a
// local .env), applies environment overrides and defaults, and resolves
// every path to an absolute one. A missing config file yields the defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	if path == "" {
		path = getString("TASUKI_CONFIG", "")
	}
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cfg := &Config{}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, domain.WrapError(domain.ErrCodeConfig, fmt.Sprintf("parse %s", path), err)
		}
	} else if !os.IsNotExist(err) {
		return nil, domain.WrapError(domain.ErrCodeIO, fmt.Sprintf("read %s", path), err)
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// DefaultPath is <user config dir>/tasuki/config.toml.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeConfig, "could not find config directory", err)
	}
	return filepath.Join(base, "tasuki", "config.toml"), nil
}

func (c *Config) resolve() error {
	c.Logger.Level = getString("TASUKI_LOG_LEVEL", defaultString(c.Logger.Level, "info"))
	c.Logger.Encoding = getString("TASUKI_LOG_ENCODING", defaultString(c.Logger.Encoding, "console"))

	c.Backends.Local.Path = getString("TASUKI_TODO_FILE", c.Backends.Local.Path)
	if c.Backends.Local.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return domain.WrapError(domain.ErrCodeConfig, "could not find home directory", err)
		}
		c.Backends.Local.Path = filepath.Join(home, ".tasuki", "todo.txt")
	} else {
		expanded, err := expandTilde(c.Backends.Local.Path)
		if err != nil {
			return err
		}
		c.Backends.Local.Path = expanded
	}
	if c.Backends.Local.Enabled {
		parent := filepath.Dir(c.Backends.Local.Path)
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return domain.WrapError(domain.ErrCodeConfig, fmt.Sprintf("failed to create %s", parent), err)
		}
	}

	c.Backends.Obsidian.VaultPath = getString("TASUKI_VAULT_PATH", c.Backends.Obsidian.VaultPath)
	if c.Backends.Obsidian.Enabled && c.Backends.Obsidian.VaultPath == "" {
		return domain.NewError(domain.ErrCodeConfig, "backends.obsidian.vault_path is required")
	}
	if c.Backends.Obsidian.VaultPath != "" {
		expanded, err := expandTilde(c.Backends.Obsidian.VaultPath)
		if err != nil {
			return err
		}
		c.Backends.Obsidian.VaultPath = expanded
	}
	if c.Backends.Obsidian.IgnoreFolders == nil {
		c.Backends.Obsidian.IgnoreFolders = []string{".obsidian", ".trash", ".git"}
	}
	if c.Backends.Obsidian.InboxFile == "" {
		c.Backends.Obsidian.InboxFile = "Inbox.md"
	}

	return nil
}

func expandTilde(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeConfig, "could not expand ~", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func defaultString(val, fallback string) string {
	if val != "" {
		return val
	}
	return fallback
}
