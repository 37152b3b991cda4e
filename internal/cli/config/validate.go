package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

var (
	validDrivers     = []string{"sqlite", "postgres"}
	validOutputs     = []string{"auto", "text", "markdown", "json", "yaml"}
	validSourceKinds = []string{"store", "http", "file"}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(validDrivers, c.Driver) {
		return fmt.Errorf("unknown driver %q (available: %s)\nHint: set driver in %s", c.Driver, strings.Join(validDrivers, ", "), DefaultConfigFileName)
	}
	if c.Driver == "postgres" && c.DSN == "" {
		return fmt.Errorf("driver postgres requires a dsn")
	}
	if c.Driver == "sqlite" && c.StoreDSN() == "" {
		return fmt.Errorf("state_path is required")
	}
	if !slices.Contains(validOutputs, c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (available: %s)", c.OutputFormat, strings.Join(validOutputs, ", "))
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}
	for unit, code := range c.Grid.Currencies {
		if _, err := currency.ParseISO(code); err != nil {
			return fmt.Errorf("invalid currency %q for unit %q: %w", code, unit, err)
		}
	}
	for key, w := range c.Grid.ColumnWidths {
		if w <= 0 {
			return fmt.Errorf("column width for %q must be positive, got %d", key, w)
		}
	}
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if c.UI != nil && (c.UI.Port < 0 || c.UI.Port > 65535) {
		return fmt.Errorf("ui.port out of range: %d", c.UI.Port)
	}
	return nil
}

// Validate checks the source selection.
func (s *SourceConfig) Validate() error {
	switch s.Kind {
	case "store", "":
		return nil
	case "http":
		if s.BaseURL == "" {
			return fmt.Errorf("source kind http requires source.base_url")
		}
		u, err := url.Parse(s.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("source.base_url must be an http or https URL: %q", s.BaseURL)
		}
	case "file":
		if s.File == "" {
			return fmt.Errorf("source kind file requires source.file")
		}
	default:
		return fmt.Errorf("unknown source kind %q (available: %s)", s.Kind, strings.Join(validSourceKinds, ", "))
	}
	if s.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative")
	}
	return nil
}

// ValidateImportDir checks that the watched import directory exists.
func (c *Config) ValidateImportDir() error {
	dir := c.GetUIConfig().ImportDir
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("import directory does not exist: %s\nHint: Create the directory or use --import-dir to specify a different path", dir)
	}
	return nil
}
