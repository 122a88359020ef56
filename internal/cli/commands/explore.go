package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/airlens/airlens/internal/tui"
)

// NewExploreCommand creates the explore command.
func NewExploreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse the catalog interactively",
		Long: `Open a full-screen terminal session for exploring the listings table.

Pick a query from the catalog, fill in its parameters, and page through
the results without leaving the keyboard. Queries with an attached
analysis can be flipped between table and chart view.

Keys:
  up/down, j/k   move through the catalog or results
  enter          select a query / run it
  tab            next parameter field
  s              cycle the sort column, S flips the direction
  c              toggle chart view on analysis queries
  esc            back to the catalog
  q, ctrl+c      quit`,
		Example: `  # Open the explorer
  airlens explore`,
		Args: cobra.NoArgs,
		RunE: runExplore,
	}

	return cmd
}

func runExplore(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if !cmdCtx.Renderer.IsTTY() {
		return errors.New("explore needs an interactive terminal, use 'airlens run' in scripts")
	}

	return tui.Run(cmd.Context(), cmdCtx.Runner, cmdCtx.Logger)
}
