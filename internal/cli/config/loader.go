package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// EnvPrefix is the prefix of environment variables read into the config.
// A double underscore separates nesting levels: LEAPGRID_SOURCE__BASE_URL
// sets source.base_url.
const EnvPrefix = "LEAPGRID_"

// configFileNames are searched in order when no --config is given.
var configFileNames = []string{DefaultConfigFileName, "leapgrid.yml"}

// flagKeys maps flag names onto config keys where they differ from the
// snake_case flag name.
var flagKeys = map[string]string{
	"state":       "state_path",
	"env":         "environment",
	"ticker":      "query.ticker",
	"company":     "query.company",
	"source":      "source.kind",
	"base-url":    "source.base_url",
	"source-file": "source.file",
	"port":        "ui.port",
	"watch":       "ui.watch",
	"import-dir":  "ui.import_dir",
	"sheet":       "importer.sheet",
}

// pathFlags are flags whose values are paths relative to the working
// directory rather than to the project root.
var pathFlags = map[string]bool{
	"state":       true,
	"source-file": true,
	"import-dir":  true,
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// configExistsIn returns the config file in dir, if any.
func configExistsIn(dir string) string {
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findProjectRootUpward searches upward from startDir for a leapgrid config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot determines the directory relative paths are resolved
// against: the explicit config file's directory, else the nearest directory
// upward holding leapgrid.yaml, else the working directory.
func inferProjectRoot(cfgFile string) string {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
	}
	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		return "."
	}
	if root := findProjectRootUpward(cwd); root != "" {
		return root
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) || path == ":memory:" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

func defaults() map[string]any {
	return map[string]any{
		"state_path":            DefaultStateFile,
		"driver":                DefaultDriver,
		"verbose":               false,
		"output":                DefaultOutput,
		"locale":                DefaultLocale,
		"source.kind":           DefaultSourceKind,
		"source.timeout":        DefaultSourceTimeout.String(),
		"refresh.discard_stale": true,
		"ui.port":               DefaultPort,
		"ui.auto_open":          true,
		"ui.watch":              false,
		"ui.import_dir":         DefaultImportDir,
	}
}

// envKey transforms LEAPGRID_SOURCE__BASE_URL into source.base_url.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// selectedEnvironment returns the environment named by --env, then
// LEAPGRID_ENVIRONMENT, then the config file.
func selectedEnvironment(flags *pflag.FlagSet) string {
	if flags != nil && flags.Changed("env") {
		if v, _ := flags.GetString("env"); v != "" {
			return v
		}
	}
	if v := os.Getenv(EnvPrefix + "ENVIRONMENT"); v != "" {
		return v
	}
	return k.String("environment")
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > selected environment >
// config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	projectRoot := inferProjectRoot(cfgFile)

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = cfgFile
	if configFileUsed == "" {
		configFileUsed = configExistsIn(projectRoot)
	}
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Overlay the selected environment block
	envName := selectedEnvironment(flags)
	if envName != "" {
		if sub := k.Cut("environments." + envName); len(sub.Keys()) > 0 {
			if err := k.Merge(sub); err != nil {
				return nil, fmt.Errorf("failed to apply environment %s: %w", envName, err)
			}
		}
		if err := k.Set("environment", envName); err != nil {
			return nil, fmt.Errorf("failed to set environment: %w", err)
		}
	}

	// 4. Load environment variables (LEAPGRID_ prefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Load flags (highest priority - overrides env vars and config file)
	flagPaths := make(map[string]string)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			val := posflag.FlagVal(flags, f)
			if pathFlags[f.Name] {
				if s, ok := val.(string); ok && s != "" {
					if abs, err := filepath.Abs(s); err == nil {
						flagPaths[key] = abs
					}
				}
			}
			return key, val
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 6. Unmarshal into Config struct
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 7. Resolve paths. Flag paths are relative to the working directory,
	// everything else to the project root.
	cfg.StatePath = pathOr(flagPaths["state_path"], resolvePathRelativeTo(cfg.StatePath, projectRoot))
	cfg.Source.File = pathOr(flagPaths["source.file"], resolvePathRelativeTo(cfg.Source.File, projectRoot))
	if cfg.UI == nil {
		cfg.UI = DefaultUIConfig()
	}
	cfg.UI.ImportDir = pathOr(flagPaths["ui.import_dir"], resolvePathRelativeTo(cfg.UI.ImportDir, projectRoot))

	expandSecrets(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

func pathOr(flagPath, resolved string) string {
	if flagPath != "" {
		return flagPath
	}
	return resolved
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// WithLogger returns ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR}
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

// expandSecrets expands environment variables in credential fields.
func expandSecrets(c *Config) {
	c.DSN = expandEnvVars(c.DSN)
	c.Source.BaseURL = expandEnvVars(c.Source.BaseURL)
	c.Source.Username = expandEnvVars(c.Source.Username)
	c.Source.Password = expandEnvVars(c.Source.Password)
	if c.UI != nil {
		c.UI.SessionSecret = expandEnvVars(c.UI.SessionSecret)
	}
}
