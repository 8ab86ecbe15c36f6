// ABOUTME: Healthcal configuration management with backend selection.
// ABOUTME: Handles settings, storage backend factory, and path expansion.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KishParikh13/HealthToCalendar/internal/calendar"
	"github.com/KishParikh13/HealthToCalendar/internal/health"
	"github.com/KishParikh13/HealthToCalendar/internal/models"
	"github.com/KishParikh13/HealthToCalendar/internal/store"
)

// Config stores healthcal configuration.
type Config struct {
	// Backend selects the ledger persistence backend: "badger" (default,
	// local) or "charm" (synced to Charm Cloud).
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage. The sample database
	// and the badger ledger store live here. Supports ~ expansion.
	// Defaults to ~/.local/share/healthcal.
	DataDir string `json:"data_dir,omitempty"`

	// CalendarPath is the .ics file sync writes records into.
	// Defaults to <DataDir>/healthcal.ics.
	CalendarPath string `json:"calendar_path,omitempty"`

	// SyncCategories lists the categories a sync materializes.
	// Empty means all categories.
	SyncCategories []string `json:"sync_categories,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "badger".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "badger"
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return health.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetCalendarPath returns the calendar file path with ~ expanded.
func (c *Config) GetCalendarPath() string {
	if c.CalendarPath == "" {
		return filepath.Join(c.GetDataDir(), "healthcal.ics")
	}
	return ExpandPath(c.CalendarPath)
}

// EnabledCategories resolves SyncCategories against the registry.
// An empty list enables every category.
func (c *Config) EnabledCategories(registry *models.Registry) ([]models.Category, error) {
	if len(c.SyncCategories) == 0 {
		return registry.All(), nil
	}
	var cats []models.Category
	for _, name := range c.SyncCategories {
		cat, ok := registry.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown sync category: %q", name)
		}
		cats = append(cats, cat)
	}
	return cats, nil
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

// OpenStore creates a KeyValueStore based on the configured backend.
func (c *Config) OpenStore() (store.KeyValueStore, error) {
	switch c.GetBackend() {
	case "badger":
		return store.OpenBadger(filepath.Join(c.GetDataDir(), "ledger"))
	case "charm":
		return store.OpenCharm()
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.Backend)
	}
}

// OpenSamples opens the local sample database.
func (c *Config) OpenSamples() (*health.SampleStore, error) {
	return health.Open(filepath.Join(c.GetDataDir(), "samples.db"))
}

// OpenSink creates the calendar record sink.
func (c *Config) OpenSink() *calendar.ICSSink {
	return calendar.NewICSSink(c.GetCalendarPath())
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "healthcal", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
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

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
