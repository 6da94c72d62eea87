// Package config loads casewall settings from
// $XDG_CONFIG_HOME/casewall/config.toml, a .env file and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds casewall configuration.
type Config struct {
	Store   StoreConfig   `toml:"store"`
	Extract ExtractConfig `toml:"extract"`
	Canvas  CanvasConfig  `toml:"canvas"`
	UI      UIConfig      `toml:"ui"`
	Export  ExportConfig  `toml:"export"`
	Log     LogConfig     `toml:"log"`
}

// StoreConfig selects where cases are kept.
type StoreConfig struct {
	Backend string `toml:"backend"` // "file", "sqlite"
	Path    string `toml:"path"`    // empty means the data dir default
}

// ExtractConfig configures the language model used for extraction.
type ExtractConfig struct {
	Provider   string `toml:"provider"` // "openai", "ollama"
	Model      string `toml:"model"`
	BaseURL    string `toml:"base_url"`
	APIKeyEnv  string `toml:"api_key_env"`
	MaxRetries int    `toml:"max_retries"`
}

// CanvasConfig maps terminal cells to canvas pixels.
type CanvasConfig struct {
	CellWidth  int     `toml:"cell_width"`
	CellHeight int     `toml:"cell_height"`
	WheelStep  float64 `toml:"wheel_step"`
	PanStep    int     `toml:"pan_step"`
}

// UIConfig controls the interactive program.
type UIConfig struct {
	StartMenu     bool `toml:"start_menu"`
	Confirmations bool `toml:"confirmations"`
}

// ExportConfig controls where exported files go.
type ExportConfig struct {
	Dir string `toml:"dir"`
}

type LogConfig struct {
	Debug bool   `toml:"debug"`
	File  string `toml:"file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Store:   StoreConfig{Backend: "file"},
		Extract: ExtractConfig{Provider: "openai", APIKeyEnv: "OPENAI_API_KEY", MaxRetries: 3},
		Canvas:  CanvasConfig{CellWidth: 8, CellHeight: 16, WheelStep: 100, PanStep: 4},
		UI:      UIConfig{StartMenu: true, Confirmations: true},
	}
}

// ConfigDir returns the casewall config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "casewall")
}

// DataDir returns the directory holding the case store and log file.
func DataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "casewall")
}

// Path is the config file location.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file over the defaults and then applies
// environment overrides. A missing or unreadable file yields defaults.
func Load() *Config {
	cfg := Default()
	if data, err := os.ReadFile(Path()); err == nil {
		_ = toml.Unmarshal(data, cfg)
	}
	cfg.applyEnv()
	return cfg
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists() (bool, error) {
	if _, err := os.Stat(Path()); err == nil {
		return false, nil
	}
	return true, Save(Default())
}

// StorePath resolves the store location for the configured backend.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return expandHome(c.Store.Path)
	}
	if c.Store.Backend == "sqlite" {
		return filepath.Join(DataDir(), "cases.db")
	}
	return filepath.Join(DataDir(), "cases.json")
}

// LogPath is where the interactive program writes its log.
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return expandHome(c.Log.File)
	}
	return filepath.Join(DataDir(), "casewall.log")
}

// ExportPath places an exported file in the export directory, creating it
// when needed. Absolute names, or any name without a configured
// directory, are used as given.
func (c *Config) ExportPath(name string) string {
	if c.Export.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	dir := expandHome(c.Export.Dir)
	os.MkdirAll(dir, 0o755)
	return filepath.Join(dir, name)
}

// APIKey reads the key from the variable named by api_key_env.
func (c *Config) APIKey() string {
	if c.Extract.APIKeyEnv == "" {
		return ""
	}
	return GetEnvString(c.Extract.APIKeyEnv, "")
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
