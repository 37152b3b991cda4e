package commands

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/leapstack-labs/leapgrid/internal/cli/config"
	"github.com/leapstack-labs/leapgrid/internal/cli/output"
	"github.com/leapstack-labs/leapgrid/internal/decorate"
	"github.com/leapstack-labs/leapgrid/internal/grid"
	"github.com/leapstack-labs/leapgrid/internal/importer"
	"github.com/leapstack-labs/leapgrid/internal/source"
	"github.com/leapstack-labs/leapgrid/internal/state"
	"github.com/leapstack-labs/leapgrid/internal/workbook"
	"github.com/spf13/cobra"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    *state.SQLStore
	Source   source.Source
	Workbook *workbook.Workbook
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with a source, a workbook and a
// renderer. The company store is opened when the configured source reads from
// it or when requireStore is set.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command, requireStore bool) (*CommandContext, func(), error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := config.GetLogger(cmd.Context())

	var store *state.SQLStore
	if requireStore || cfg.Source.Kind == source.KindStore || cfg.Source.Kind == "" {
		store, err = openStore(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
	}
	cleanup := func() {
		if store != nil {
			_ = store.Close()
		}
	}

	src, err := newSource(cfg, store, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	wb, err := newWorkbook(cfg, src, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Store:    store,
		Source:   src,
		Workbook: wb,
		Renderer: newRenderer(cmd, cfg),
	}, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext holding only the
// configuration, logger and renderer.
func NewCommandContextWithoutStore(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: newRenderer(cmd, cfg),
	}, nil
}

// Helper functions shared across commands

// getConfig returns the current configuration, loading it from the working
// directory and LEAPGRID_ environment variables when no root command ran.
func getConfig() (*config.Config, error) {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", nil)
}

func newRenderer(cmd *cobra.Command, cfg *config.Config) *output.Renderer {
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
}

// openStore opens the company store and applies pending migrations.
func openStore(cfg *config.Config, logger *slog.Logger) (*state.SQLStore, error) {
	store := state.NewStore(logger)
	if err := store.Open(cfg.Driver, cfg.StoreDSN()); err != nil {
		return nil, fmt.Errorf("failed to open company store: %w", err)
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize company store: %w", err)
	}
	return store, nil
}

func newSource(cfg *config.Config, store *state.SQLStore, logger *slog.Logger) (source.Source, error) {
	opts := source.Options{
		Kind: cfg.Source.Kind,
		HTTP: source.HTTPConfig{
			BaseURL:  cfg.Source.BaseURL,
			Username: cfg.Source.Username,
			Password: cfg.Source.Password,
			Timeout:  cfg.Source.Timeout,
			Logger:   logger,
		},
		File: cfg.Source.File,
	}
	// A nil *SQLStore must not become a non-nil interface.
	if store == nil {
		return source.New(opts, nil)
	}
	return source.New(opts, store)
}

// newWorkbook wires the configured column widths, locale and currencies into
// a workbook reading from src.
func newWorkbook(cfg *config.Config, src source.Source, logger *slog.Logger) (*workbook.Workbook, error) {
	opts, err := decorateOptions(cfg)
	if err != nil {
		return nil, err
	}
	var columns []grid.ColumnOption
	if len(cfg.Grid.ColumnWidths) > 0 {
		columns = append(columns, grid.WithWidths(cfg.Grid.ColumnWidths))
	}
	return workbook.New(workbook.Config{
		Source:       src,
		Query:        cfg.Query,
		DiscardStale: cfg.Refresh.DiscardStale,
		Columns:      columns,
		Decorate:     opts,
		Logger:       logger,
	})
}

func decorateOptions(cfg *config.Config) ([]decorate.Option, error) {
	var opts []decorate.Option
	if cfg.Locale != "" {
		tag, err := language.Parse(cfg.Locale)
		if err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", cfg.Locale, err)
		}
		opts = append(opts, decorate.WithLanguage(tag))
	}
	for unit, code := range cfg.Grid.Currencies {
		cur, err := currency.ParseISO(code)
		if err != nil {
			return nil, fmt.Errorf("invalid currency %q: %w", code, err)
		}
		opts = append(opts, decorate.WithCurrency(unit, cur))
	}
	return opts, nil
}

func newImporter(cfg *config.Config, logger *slog.Logger) *importer.Importer {
	return importer.New(importer.Config{
		Sections: cfg.Importer.Sections,
		Logger:   logger,
	})
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return fmt.Errorf("don't know how to open a browser on %s", runtime.GOOS)
	}

	return cmd.Start()
}
