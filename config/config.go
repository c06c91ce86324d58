package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings is the on-disk configuration. Missing fields fall back to
// defaults on load; a missing admin key is generated once and persisted.
type Settings struct {
	Server   ServerSettings   `yaml:"server"`
	Database DatabaseSettings `yaml:"database"`
	Sync     SyncSettings     `yaml:"sync"`
	Admin    AdminSettings    `yaml:"admin"`
	Log      LogSettings      `yaml:"log"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Port int `yaml:"port"`
}

// DatabaseSettings configures the SQLite store.
type DatabaseSettings struct {
	Path string `yaml:"path"`
}

// SyncSettings configures the background refresh loop.
type SyncSettings struct {
	IntervalMinutes int `yaml:"interval_minutes"`
}

// AdminSettings holds the key protecting the management API.
type AdminSettings struct {
	APIKey string `yaml:"api_key"`
}

// LogSettings configures the rotating log file. An empty file path logs to
// stderr only.
type LogSettings struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Manager loads and saves settings, caching the last loaded copy.
type Manager struct {
	path   string
	mu     sync.RWMutex
	cached *Settings
}

// NewManager creates a manager reading settings from path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load reads the settings file, applying defaults for missing fields. The
// first load of a file without an admin key generates one and writes it
// back so the key survives restarts.
func (m *Manager) Load() (*Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached != nil {
		clone := *m.cached
		return &clone, nil
	}

	settings := defaultSettings()

	data, err := os.ReadFile(m.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Printf("[config] %s not found, creating with defaults", m.path)
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		applyDefaults(settings)
	}

	if settings.Admin.APIKey == "" {
		key, err := generateAPIKey()
		if err != nil {
			return nil, err
		}
		settings.Admin.APIKey = key
		log.Printf("[config] generated admin API key")
		if err := m.save(settings); err != nil {
			return nil, err
		}
	}

	m.cached = settings
	clone := *settings
	return &clone, nil
}

// Save writes settings to disk and updates the cache.
func (m *Manager) Save(settings *Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save(settings)
}

func (m *Manager) save(settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	clone := *settings
	m.cached = &clone
	return nil
}

func defaultSettings() *Settings {
	return &Settings{
		Server:   ServerSettings{Port: 8080},
		Database: DatabaseSettings{Path: "data/octoboard.db"},
		Sync:     SyncSettings{IntervalMinutes: 60},
		Log: LogSettings{
			File:       "",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

func applyDefaults(settings *Settings) {
	defaults := defaultSettings()
	if settings.Server.Port == 0 {
		settings.Server.Port = defaults.Server.Port
	}
	if settings.Database.Path == "" {
		settings.Database.Path = defaults.Database.Path
	}
	if settings.Sync.IntervalMinutes <= 0 {
		settings.Sync.IntervalMinutes = defaults.Sync.IntervalMinutes
	}
	if settings.Log.MaxSizeMB <= 0 {
		settings.Log.MaxSizeMB = defaults.Log.MaxSizeMB
	}
	if settings.Log.MaxBackups <= 0 {
		settings.Log.MaxBackups = defaults.Log.MaxBackups
	}
	if settings.Log.MaxAgeDays <= 0 {
		settings.Log.MaxAgeDays = defaults.Log.MaxAgeDays
	}
}

// generateAPIKey returns a URL-safe random key with 256 bits of entropy.
func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
