package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapgrid/internal/ui"
	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	NoBrowser bool
	Dev       bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Serve the grid viewer in the browser",
		Long: `Start a local web server showing the selected company's grid.

The viewer provides:
- Pull Data to refresh from the source
- Download JSON of the current payload
- Link previews on hover, opened on click
- Live updates when another tab or the import watcher refreshes

With --watch, workbooks written to the import directory are imported
into the store and the grid refreshes when the viewed ticker changes.`,
		Example: `  # Start on the default port
  leapgrid serve --ticker RDDT

  # Start on a custom port without opening a browser
  leapgrid serve --port 3000 --no-browser

  # Watch a directory for updated workbooks
  leapgrid serve --watch --import-dir ~/models`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().Bool("watch", false, "Import workbooks written to the import directory")
	cmd.Flags().String("import-dir", "", "Directory watched by --watch (default: imports)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Mark pages as development builds")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg, err := getConfig()
	if err != nil {
		return err
	}
	// The watcher imports into the store whatever the source is.
	cmdCtx, cleanup, err := NewCommandContext(cmd, cfg.GetUIConfig().Watch)
	if err != nil {
		return err
	}
	defer cleanup()

	uiCfg := cfg.GetUIConfig()
	r := cmdCtx.Renderer

	autoOpen := uiCfg.AutoOpen && !opts.NoBrowser

	srvCfg := ui.Config{
		Workbook:      cmdCtx.Workbook,
		Port:          uiCfg.Port,
		Watch:         uiCfg.Watch,
		ImportDir:     uiCfg.ImportDir,
		SessionSecret: uiCfg.GetSessionSecret(),
		Dev:           opts.Dev,
		Logger:        cmdCtx.Logger,
	}
	if cmdCtx.Store != nil {
		srvCfg.Store = cmdCtx.Store
		srvCfg.Importer = newImporter(cfg, cmdCtx.Logger)
	}
	server := ui.NewServer(srvCfg)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Load the first snapshot before the first page is served.
	if !cmdCtx.Workbook.Query().IsZero() {
		if _, err := cmdCtx.Workbook.Refresh(ctx); err != nil && !errors.Is(err, core.ErrNoData) {
			r.Warning(fmt.Sprintf("initial load failed: %v", err))
		}
	}

	if autoOpen {
		go func() {
			if err := openBrowser(server.URL()); err != nil {
				cmdCtx.Logger.Debug("failed to open browser", "error", err)
			}
		}()
	}

	r.Println(fmt.Sprintf("Starting UI server on %s", server.URL()))
	r.Muted("Press Ctrl+C to stop")

	return server.Serve(ctx)
}
