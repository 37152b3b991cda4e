package commands

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/spf13/cobra"
)

// FetchOptions holds options for the fetch command.
type FetchOptions struct {
	Model bool
}

// NewFetchCommand creates the fetch command.
func NewFetchCommand() *cobra.Command {
	opts := &FetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print the raw payload or grid model for a company",
		Long: `Fetch the selected company from the configured source and print it.

By default the payload envelope is printed as the source returned it.
With --model the payload is flattened into the grid model first.
Output is JSON unless --output yaml is given.`,
		Example: `  # Save a company's payload for use with --source file
  leapgrid fetch --ticker RDDT --source http > rddt.json

  # Inspect the flattened grid model
  leapgrid fetch --ticker RDDT --model -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Model, "model", false, "Print the grid model instead of the payload")

	return cmd
}

func runFetch(cmd *cobra.Command, opts *FetchOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, false)
	if err != nil {
		return err
	}
	defer cleanup()

	q := cmdCtx.Workbook.Query()

	if !opts.Model {
		payload, err := cmdCtx.Source.Fetch(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", q, err)
		}
		return cmdCtx.Renderer.Data(payload)
	}

	snap, err := cmdCtx.Workbook.Refresh(cmd.Context())
	if err != nil && !errors.Is(err, core.ErrNoData) {
		return fmt.Errorf("failed to load %s: %w", q, err)
	}
	return cmdCtx.Renderer.Data(snap.Model)
}
