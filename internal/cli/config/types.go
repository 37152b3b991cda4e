// Package config provides configuration management for the LeapGrid CLI.
//
// Values are layered with koanf: built-in defaults, then leapgrid.yaml, then
// LEAPGRID_ environment variables, then flags that were set explicitly.
package config

import (
	"time"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string               `koanf:"state_path"`
	Driver       string               `koanf:"driver"`
	DSN          string               `koanf:"dsn"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	OutputFormat string               `koanf:"output"`
	Locale       string               `koanf:"locale"`
	Source       SourceConfig         `koanf:"source"`
	Query        core.Query           `koanf:"query"`
	Refresh      RefreshConfig        `koanf:"refresh"`
	UI           *UIConfig            `koanf:"ui"`
	Grid         GridConfig           `koanf:"grid"`
	Importer     ImporterConfig       `koanf:"importer"`
	Environments map[string]EnvConfig `koanf:"environments"`
}

// SourceConfig selects where company payloads are fetched from.
type SourceConfig struct {
	Kind     string        `koanf:"kind"`
	BaseURL  string        `koanf:"base_url"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	File     string        `koanf:"file"`
	Timeout  time.Duration `koanf:"timeout"`
}

// RefreshConfig controls the refresh controller.
type RefreshConfig struct {
	DiscardStale bool `koanf:"discard_stale"`
}

// UIConfig holds configuration for the UI server.
type UIConfig struct {
	Port          int    `koanf:"port"`
	AutoOpen      bool   `koanf:"auto_open"`
	Watch         bool   `koanf:"watch"`
	ImportDir     string `koanf:"import_dir"`
	SessionSecret string `koanf:"session_secret"`
}

// GridConfig customizes grid materialization and number display.
type GridConfig struct {
	// ColumnWidths overrides pixel widths by column key (name, unit,
	// source, tag_id or a period).
	ColumnWidths map[string]int `koanf:"column_widths"`
	// Currencies maps metric units to ISO 4217 codes rendered as money.
	Currencies map[string]string `koanf:"currencies"`
}

// ImporterConfig configures the workbook importer.
type ImporterConfig struct {
	Sections []string `koanf:"sections"`
	Sheet    string   `koanf:"sheet"`
}

// EnvConfig holds environment-specific overrides.
type EnvConfig struct {
	Driver string        `koanf:"driver"`
	DSN    string        `koanf:"dsn"`
	Source *SourceConfig `koanf:"source"`
	Query  *core.Query   `koanf:"query"`
}

// Default configuration values.
const (
	DefaultStateFile      = ".leapgrid/state.db"
	DefaultDriver         = "sqlite"
	DefaultOutput         = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLocale         = "en-US"
	DefaultSourceKind     = "store"
	DefaultSourceTimeout  = 30 * time.Second
	DefaultPort           = 8765
	DefaultImportDir      = "imports"
	DefaultConfigFileName = "leapgrid.yaml"
	DefaultSessionSecret  = "leapgrid-dev-secret-change-in-production" //nolint:gosec
)

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:      DefaultPort,
		AutoOpen:  true,
		Watch:     false,
		ImportDir: DefaultImportDir,
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = DefaultPort
	}
	if ui.ImportDir == "" {
		ui.ImportDir = DefaultImportDir
	}
	return ui
}

// GetSessionSecret returns the configured cookie secret or the development
// default.
func (u *UIConfig) GetSessionSecret() string {
	if u.SessionSecret != "" {
		return u.SessionSecret
	}
	return DefaultSessionSecret
}

// StoreDSN returns the data source name for the company store. SQLite falls
// back to the state path.
func (c *Config) StoreDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Driver == "" || c.Driver == DefaultDriver {
		return c.StatePath
	}
	return ""
}
