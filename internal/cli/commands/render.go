package commands

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapgrid/pkg/core"
	"github.com/spf13/cobra"
)

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the decorated grid for a company",
		Long: `Fetch the selected company once and print its grid.

Output adapts to environment:
  - Terminal: Table with number formats, colors and borders applied
  - Piped/Scripted: Markdown table
  - --output json/yaml: rows and cells as data`,
		Example: `  # Render a company from the store
  leapgrid render --ticker RDDT

  # Render from the backend API as markdown
  leapgrid render --ticker RDDT --source http -o markdown

  # Render a saved payload
  leapgrid render --source file --source-file rddt.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd)
		},
	}

	return cmd
}

func runRender(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, false)
	if err != nil {
		return err
	}
	defer cleanup()

	snap, err := cmdCtx.Workbook.Refresh(cmd.Context())
	if err != nil && !errors.Is(err, core.ErrNoData) {
		return fmt.Errorf("failed to load %s: %w", cmdCtx.Workbook.Query(), err)
	}
	return cmdCtx.Renderer.Grid(snap)
}
