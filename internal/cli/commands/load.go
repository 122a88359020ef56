package commands

import (
	"fmt"
	"os"

	"github.com/airlens/airlens/internal/load"
	"github.com/spf13/cobra"
)

// LoadOptions holds options for the load command.
type LoadOptions struct {
	Table string // Destination table for a single file
	Watch bool   // Keep watching the file and reload on change
}

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	opts := &LoadOptions{}
	cmd := &cobra.Command{
		Use:   "load <csv-file-or-directory>",
		Short: "Load CSV data into the database",
		Long: `Load a CSV file, or every CSV file in a directory, into the database.

Each file replaces the table named after it (listings.csv -> listings);
use --table to override the destination for a single file. With --watch
the file is reloaded whenever it changes, debounced, until interrupted.`,
		Example: `  # Load one file into the table named after it
  airlens load data/listings.csv

  # Load into a specific table
  airlens load data/listings.csv --table listings

  # Load every CSV in a directory
  airlens load data/

  # Keep reloading while the file is being edited
  airlens load data/listings.csv --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Table, "table", "t", "", "Destination table (single file only)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Reload whenever the file changes")

	return cmd
}

func runLoad(cmd *cobra.Command, path string, opts *LoadOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	loader := load.NewLoader(cmdCtx.Adapter, cmdCtx.Logger)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot load %s: %w", path, err)
	}

	if info.IsDir() {
		if opts.Table != "" {
			return fmt.Errorf("--table applies to a single file, not a directory")
		}
		if opts.Watch {
			return fmt.Errorf("--watch applies to a single file, not a directory")
		}
		counts, err := loader.LoadDir(cmd.Context(), path)
		if err != nil {
			return err
		}
		for table, count := range counts {
			r.Success(fmt.Sprintf("loaded %d rows into %s", count, table))
		}
		return nil
	}

	table := opts.Table
	if table == "" {
		table = load.TableName(info.Name())
	}

	spinner := r.NewSpinner(fmt.Sprintf("loading %s into %s", path, table))
	spinner.Start()
	count, err := loader.LoadFile(cmd.Context(), table, path)
	if err != nil {
		spinner.Fail("load failed")
		return err
	}
	spinner.Success(fmt.Sprintf("loaded %d rows into %s", count, table))

	if !opts.Watch {
		return nil
	}

	r.Printf("watching %s for changes (ctrl-c to stop)\n", path)
	return loader.Watch(cmd.Context(), table, path, func(count int64, err error) {
		if err != nil {
			r.Warning(fmt.Sprintf("reload failed: %v", err))
			return
		}
		r.Success(fmt.Sprintf("reloaded %d rows into %s", count, table))
	})
}
