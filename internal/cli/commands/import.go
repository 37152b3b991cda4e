package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapgrid/internal/importer"
	"github.com/spf13/cobra"
)

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.xlsx>...",
		Short: "Import workbooks into the company store",
		Long: `Read metric hierarchies, values, styling, comments and links from
Excel workbooks and save each as a company in the store.

The ticker defaults to the file name up to the first underscore, space
or dot ("RDDT_Q2 model.xlsx" imports as RDDT). Use --ticker and
--company to override it when importing a single file.`,
		Example: `  # Import a workbook
  leapgrid import RDDT.xlsx

  # Import a specific sheet under an explicit ticker
  leapgrid import model.xlsx --ticker RDDT --company "Reddit, Inc." --sheet Model`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args)
		},
	}

	cmd.Flags().String("sheet", "", "Worksheet to read (default: the active sheet)")

	return cmd
}

func runImport(cmd *cobra.Command, paths []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, true)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer
	im := newImporter(cfg, cmdCtx.Logger)

	// Only explicit flags override the file name; the configured query
	// selects what is viewed, not what is imported.
	tickerSet := cmd.Flags().Changed("ticker")
	companySet := cmd.Flags().Changed("company")
	if len(paths) > 1 && (tickerSet || companySet) {
		return fmt.Errorf("--ticker and --company apply to a single workbook, got %d", len(paths))
	}

	var failed int
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			r.StatusLine(path, "error", err.Error())
			failed++
			continue
		}

		meta := importer.MetaFromPath(path)
		if tickerSet {
			meta.Ticker = strings.ToUpper(cfg.Query.Ticker)
			meta.Company = meta.Ticker
		}
		if companySet {
			meta.Company = cfg.Query.Company
		}
		meta.Sheet = cfg.Importer.Sheet

		stored, err := im.ImportToStore(cmd.Context(), cmdCtx.Store, path, meta)
		if err != nil {
			r.StatusLine(path, "error", err.Error())
			failed++
			continue
		}
		r.StatusLine(path, "success", stored.Ticker+": "+strconv.Itoa(stored.MetricCount)+" metrics")
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d imports failed", failed, len(paths))
	}
	return nil
}
