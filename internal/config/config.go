// Package config provides the YAML-based application configuration shared by
// the CLI and the HTTP server.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the sync endpoint.
	Listen string `yaml:"listen"`

	// AllowedOrigin is the browser-extension origin allowed by CORS,
	// e.g. "chrome-extension://klldcleohebcjhdplkcdnjabebgmabfa".
	AllowedOrigin string `yaml:"allowed_origin"`

	// TableID is the element id of the timetable on the portal page.
	TableID string `yaml:"table_id"`

	// DataDir is where sync history is kept.
	DataDir string `yaml:"data_dir"`

	// Palette overrides the calendar color ids cycled through per subject.
	Palette []string `yaml:"palette,omitempty"`

	// ReminderMinutes is the popup reminder offset on inserted events.
	ReminderMinutes int `yaml:"reminder_minutes"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          "127.0.0.1:5001",
		AllowedOrigin:   "",
		TableID:         defaultTableID,
		DataDir:         "~/.local/share/uel-sync",
		Palette:         nil,
		ReminderMinutes: 15,
	}
}

// defaultTableID mirrors the portal's timetable element id; kept here so a
// portal redeploy only needs a config change.
const defaultTableID = "portlet_3750a397-90f5-4478-b67c-a8f0a1a4060b_ctl00_tblThoiKhoaBieu"

// Normalize fills in missing/zero values with defaults so partially-filled
// configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:5001"
	}
	if c.TableID == "" {
		c.TableID = defaultTableID
	}
	if c.DataDir == "" {
		c.DataDir = "~/.local/share/uel-sync"
	}
	if c.ReminderMinutes <= 0 {
		c.ReminderMinutes = 15
	}
}

// Load loads configuration from the given YAML path. A missing file yields a
// default config written back to the path with 0600 permissions.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with 0600
// permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".uel-sync-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
