package commands

import (
	"github.com/leapstack-labs/leapgrid/internal/tui"
	"github.com/spf13/cobra"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Explore a company's grid in the terminal",
		Long: `Open an interactive terminal viewer for the selected company.

Keys:
  arrows/hjkl  move the cursor
  enter/o      open the link of the current cell
  esc          close the link preview
  r            refresh from the source
  ?            toggle help
  q            quit

Moving onto a linked cell opens a preview of its link. Only one preview
is shown at a time.`,
		Example: `  # Browse a company from the store
  leapgrid browse --ticker RDDT

  # Browse live data from the backend
  leapgrid browse --ticker RDDT --source http`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd)
		},
	}

	return cmd
}

func runBrowse(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, false)
	if err != nil {
		return err
	}
	defer cleanup()

	return tui.Run(tui.Config{
		Workbook: cmdCtx.Workbook,
		Open:     openBrowser,
		Context:  cmd.Context(),
		Logger:   cmdCtx.Logger,
	})
}
