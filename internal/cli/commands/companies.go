package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/spf13/cobra"
)

// CompanyOutput is one stored company in JSON or YAML output.
type CompanyOutput struct {
	Ticker      string    `json:"ticker" yaml:"ticker"`
	Company     string    `json:"company" yaml:"company"`
	UpdatedAt   string    `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	MetricCount int       `json:"metric_count" yaml:"metric_count"`
	SavedAt     time.Time `json:"saved_at" yaml:"saved_at"`
}

// ImportOutput is one import history entry in JSON or YAML output.
type ImportOutput struct {
	ID          string     `json:"id" yaml:"id"`
	Ticker      string     `json:"ticker" yaml:"ticker"`
	File        string     `json:"file" yaml:"file"`
	Status      string     `json:"status" yaml:"status"`
	MetricCount int        `json:"metric_count" yaml:"metric_count"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// CompaniesOptions holds options for the companies command.
type CompaniesOptions struct {
	Imports bool
	Limit   int
	Delete  string
}

// NewCompaniesCommand creates the companies command.
func NewCompaniesCommand() *cobra.Command {
	opts := &CompaniesOptions{}

	cmd := &cobra.Command{
		Use:     "companies",
		Aliases: []string{"ls"},
		Short:   "List companies in the store",
		Long: `List every company saved in the company store with its metric count.

Output adapts to environment:
  - Terminal: Table
  - Piped/Scripted: Markdown table (agent-friendly)

Use --output to override: auto, text, markdown, json, yaml`,
		Example: `  # List stored companies
  leapgrid companies

  # Show the last 20 workbook imports for one ticker
  leapgrid companies --imports --ticker RDDT --limit 20

  # Remove a company
  leapgrid companies --delete RDDT`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompanies(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Imports, "imports", false, "Show workbook import history instead")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "Maximum number of imports to show")
	cmd.Flags().StringVar(&opts.Delete, "delete", "", "Delete the company with this ticker")

	return cmd
}

func runCompanies(cmd *cobra.Command, opts *CompaniesOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, true)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	store := cmdCtx.Store
	r := cmdCtx.Renderer

	if opts.Delete != "" {
		if err := store.DeleteCompany(ctx, opts.Delete); err != nil {
			return fmt.Errorf("failed to delete %s: %w", opts.Delete, err)
		}
		r.Success(fmt.Sprintf("deleted %s", opts.Delete))
		return nil
	}

	if opts.Imports {
		recs, err := store.ListImports(ctx, cmdCtx.Cfg.Query.Ticker, opts.Limit)
		if err != nil {
			return fmt.Errorf("failed to list imports: %w", err)
		}
		return renderImports(cmdCtx, recs)
	}

	companies, err := store.ListCompanies(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}
	return renderCompanies(cmdCtx, companies)
}

func renderCompanies(cmdCtx *CommandContext, companies []*core.StoredCompany) error {
	records := make([]CompanyOutput, 0, len(companies))
	rows := make([][]string, 0, len(companies))
	for _, c := range companies {
		records = append(records, CompanyOutput{
			Ticker:      c.Ticker,
			Company:     c.Company,
			UpdatedAt:   c.UpdatedAt,
			Source:      c.Source,
			MetricCount: c.MetricCount,
			SavedAt:     c.SavedAt,
		})
		rows = append(rows, []string{
			c.Ticker,
			c.Company,
			strconv.Itoa(c.MetricCount),
			c.UpdatedAt,
			c.SavedAt.Format(time.DateTime),
		})
	}
	cols := []string{"Ticker", "Company", "Metrics", "Updated", "Saved"}
	return renderRecords(cmdCtx.Renderer, cols, rows, records)
}

func renderImports(cmdCtx *CommandContext, recs []*core.ImportRecord) error {
	records := make([]ImportOutput, 0, len(recs))
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		records = append(records, ImportOutput{
			ID:          rec.ID,
			Ticker:      rec.Ticker,
			File:        rec.File,
			Status:      string(rec.Status),
			MetricCount: rec.MetricCount,
			StartedAt:   rec.StartedAt,
			CompletedAt: rec.CompletedAt,
			Error:       rec.Error,
		})
		rows = append(rows, []string{
			rec.Ticker,
			rec.File,
			string(rec.Status),
			strconv.Itoa(rec.MetricCount),
			rec.StartedAt.Format(time.DateTime),
			rec.Error,
		})
	}
	cols := []string{"Ticker", "File", "Status", "Metrics", "Started", "Error"}
	return renderRecords(cmdCtx.Renderer, cols, rows, records)
}
