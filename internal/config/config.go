package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"duofm/internal/logging"
	"duofm/internal/panel"
	"duofm/pkg/fsops"
)

const APP_NAME = "duofm" // application name used for config directory

// Config holds user configuration for duofm. A missing file is not an
// error; defaults apply until the user changes something.
type Config struct {
	// ShowHidden lists dot-prefixed entries in the panels.
	ShowHidden bool `yaml:"show_hidden"`
	// Theme selects the color theme ("dark" or "light").
	Theme string `yaml:"theme"`
	// SortKey is the initial panel order: "name", "size" or "modified".
	SortKey string `yaml:"sort_key"`
	// SortDesc reverses the initial order.
	SortDesc bool `yaml:"sort_desc"`
	// ConfirmDelete asks before submitting a delete job.
	ConfirmDelete bool `yaml:"confirm_delete"`
	// StartDir overrides the starting directory for both panels.
	StartDir string `yaml:"start_dir,omitempty"`
}

// ConfigPath returns the standard config file path for the current platform.
func ConfigPath() string {
	configPath := filepath.Join(xdg.ConfigHome, APP_NAME, "config.yaml")
	logging.Debug("Determined config path", "path", configPath)
	return configPath
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Theme:         "dark",
		SortKey:       "name",
		ConfirmDelete: true,
	}
}

// Load reads the config from the standard location. A missing file yields
// the defaults; a malformed file is an error so a typo never silently
// resets settings.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads config from a specific path.
func LoadFrom(path string) (*Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		logging.Debug("No config file, using defaults", "path", path)
		cfg := DefaultConfig()
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Theme {
	case "", "dark", "light":
	default:
		return fmt.Errorf("unknown theme %q", c.Theme)
	}
	switch c.SortKey {
	case "", "name", "size", "modified":
	default:
		return fmt.Errorf("unknown sort key %q", c.SortKey)
	}
	return nil
}

// Sort translates the configured order into the panel's terms.
func (c *Config) Sort() panel.Sort {
	s := panel.Sort{Desc: c.SortDesc}
	switch c.SortKey {
	case "size":
		s.Key = panel.SortSize
	case "modified":
		s.Key = panel.SortModTime
	default:
		s.Key = panel.SortName
	}
	return s
}

// Save writes the config to the standard location.
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the config to a specific path through the engine's atomic
// writer, so a crash mid-save never truncates the previous config.
func (c *Config) SaveTo(path string) error {
	if err := c.validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := fsops.AtomicWriteFile(path, data); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
