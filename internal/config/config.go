package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration for the review deck application
type Config struct {
	// BaseURL is the root of the review tracking service
	BaseURL string `json:"base_url"`

	// Token is the path to the session token file (empty = default)
	Token string `json:"token"`

	// HistoryDB is the path to the local search history database
	HistoryDB string `json:"history_db"`

	// ExportDir is where export spreadsheets are written
	ExportDir string `json:"export_dir"`

	// DebounceMs delays fetches while the operator is still typing
	DebounceMs int `json:"debounce_ms"`

	// RequestTimeout bounds a single HTTP request, e.g. "30s"
	RequestTimeout string `json:"request_timeout"`

	// Layout configuration
	Layout LayoutConfig `json:"layout"`

	// Keyboard shortcuts
	Keys KeyBindings `json:"keys"`

	// Logging
	LogFile string `json:"log_file"`
}

// LayoutConfig defines layout-specific configuration
type LayoutConfig struct {
	ShowBorders    bool   `json:"show_borders"`
	ShowTitles     bool   `json:"show_titles"`
	CompactMode    bool   `json:"compact_mode"`
	CurrentTheme   string `json:"current_theme"`    // Active theme name (e.g., "deck-dark")
	CustomThemeDir string `json:"custom_theme_dir"` // Custom themes directory (empty = default)
}

// KeyBindings defines keyboard shortcuts for the TUI
type KeyBindings struct {
	Search      string `json:"search"`
	ClearSearch string `json:"clear_search"`
	Upload      string `json:"upload"`
	ClearUpload string `json:"clear_upload"`
	Export      string `json:"export"`
	Cancel      string `json:"cancel"`
	Refresh     string `json:"refresh"`
	NextPage    string `json:"next_page"`
	PrevPage    string `json:"prev_page"`
	History     string `json:"history"`
	Logout      string `json:"logout"`
	Help        string `json:"help"`
	Quit        string `json:"quit"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "http://localhost:8000",
		DebounceMs:     500,
		RequestTimeout: "30s",
		Layout:         DefaultLayoutConfig(),
		Keys:           DefaultKeyBindings(),
		LogFile:        "",
	}
}

// DefaultLayoutConfig returns default layout configuration
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		ShowBorders:    true,
		ShowTitles:     true,
		CompactMode:    false,
		CurrentTheme:   "deck-dark",
		CustomThemeDir: "",
	}
}

// DefaultKeyBindings returns default keyboard shortcuts
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Search:      "/",
		ClearSearch: "c",
		Upload:      "u",
		ClearUpload: "U",
		Export:      "e",
		Cancel:      "x",
		Refresh:     "R",
		NextPage:    "n",
		PrevPage:    "p",
		History:     "H",
		Logout:      "L",
		Help:        "?",
		Quit:        "q",
	}
}

// LoadConfig loads configuration from file, falling back to defaults for
// anything the file does not set
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	return cfg, nil
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "reviewdeck", "config.json")
}

// DefaultTokenPath returns the default session token file path
func DefaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "reviewdeck", "token.json")
}

// DefaultHistoryDBPath returns the default search history database path
func DefaultHistoryDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "reviewdeck", "history.db")
}

// DefaultExportDir returns the default export directory path
func DefaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "reviewdeck", "exports")
}

// DefaultLogDir returns the default log directory path
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "reviewdeck")
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DebounceInterval returns the fetch debounce as a duration
func (c *Config) DebounceInterval() time.Duration {
	if c.DebounceMs > 0 {
		return time.Duration(c.DebounceMs) * time.Millisecond
	}
	return 500 * time.Millisecond
}

// GetRequestTimeout returns the parsed per-request timeout
func (c *Config) GetRequestTimeout() time.Duration {
	if c.RequestTimeout != "" {
		if d, err := time.ParseDuration(c.RequestTimeout); err == nil {
			return d
		}
	}
	return 30 * time.Second
}
