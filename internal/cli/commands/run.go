package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/airlens/airlens/internal/catalog"
	"github.com/airlens/airlens/internal/cli/output"
	"github.com/airlens/airlens/internal/exec"
	"github.com/airlens/airlens/internal/query"
	"github.com/airlens/airlens/internal/render"
)

// Chart canvas for one-shot runs. The TUI sizes charts to the window;
// here a fixed canvas keeps output stable across terminals.
const (
	chartWidth  = 72
	chartHeight = 18
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Params  []string
	Sort    string
	Desc    bool
	Format  string
	Chart   bool
	NoInput bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <id>",
		Short: "Run a query from the catalog",
		Long: `Run one of the canned queries against the listings table.

Parameters are supplied with repeated --param name=value flags. On a
terminal, any parameter left unset is prompted for interactively; in
scripts use --no-input to fail instead. Filter queries treat an empty
value as "do not filter on this".

Sortable queries accept --sort <column> and --desc. Queries with an
attached analysis can add a chart below the table with --chart.`,
		Example: `  # Top rated listings
  airlens run 2

  # Price ceiling with a parameter
  airlens run 5 --param max_price=150

  # Average price per neighbourhood, dearest first, with a bar chart
  airlens run 3 --sort avg_price --desc --chart

  # Machine-readable output
  airlens run 3 --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "Query parameter as name=value (repeatable)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "Sort results by this column")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "Sort in descending order")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, markdown")
	cmd.Flags().BoolVar(&opts.Chart, "chart", false, "Draw the query's chart below the table")
	cmd.Flags().BoolVar(&opts.NoInput, "no-input", false, "Never prompt, fail on missing parameters")

	return cmd
}

func runQuery(cmd *cobra.Command, idArg string, opts *RunOptions) error {
	id, err := strconv.Atoi(idArg)
	if err != nil {
		return fmt.Errorf("query id must be a number, got %q", idArg)
	}

	entry, err := catalog.Lookup(id)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	r := cmdCtx.Renderer

	raw, err := parseParamFlags(opts.Params)
	if err != nil {
		return err
	}
	if err := rejectUnknownParams(entry, raw); err != nil {
		return err
	}

	if r.IsTTY() && !opts.NoInput {
		if err := promptMissingParams(cmd, entry, raw); err != nil {
			return err
		}
	}

	binds, err := query.Coerce(entry, raw)
	if err != nil {
		return err
	}

	if opts.Sort != "" && !entry.SortableColumn(opts.Sort) {
		if len(entry.Sortable) == 0 {
			r.Warning(fmt.Sprintf("query %d is not sortable, ignoring --sort", entry.ID))
		} else {
			r.Warning(fmt.Sprintf("cannot sort by %q, choices are: %s",
				opts.Sort, strings.Join(entry.Sortable, ", ")))
		}
	}
	dir := query.Ascending
	if opts.Desc {
		dir = query.Descending
	}
	stmt := query.Build(entry, binds, opts.Sort, dir)

	spinner := r.NewSpinner(fmt.Sprintf("Running query %d...", entry.ID))
	spinner.Start()
	result, err := cmdCtx.Runner.Run(cmd.Context(), stmt)
	if err != nil {
		spinner.Fail("Query failed")
		return err
	}
	spinner.Success(fmt.Sprintf("%d rows", result.RowCount))

	format, err := resolveFormat(r, opts.Format)
	if err != nil {
		return err
	}
	if err := render.Results(r.Writer(), result, format); err != nil {
		return err
	}

	if opts.Chart {
		renderRunChart(r, entry, result, format)
	}
	return nil
}

// parseParamFlags splits repeated name=value pairs into a raw input map.
func parseParamFlags(pairs []string) (map[string]string, error) {
	raw := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("malformed --param %q, expected name=value", pair)
		}
		raw[name] = value
	}
	return raw, nil
}

func rejectUnknownParams(entry catalog.Entry, raw map[string]string) error {
	for name := range raw {
		if _, ok := entry.Param(name); !ok {
			known := make([]string, len(entry.Params))
			for i, p := range entry.Params {
				known[i] = p.Name
			}
			if len(known) == 0 {
				return fmt.Errorf("query %d takes no parameters, got --param %s", entry.ID, name)
			}
			return fmt.Errorf("query %d has no parameter %q, choices are: %s",
				entry.ID, name, strings.Join(known, ", "))
		}
	}
	return nil
}

// promptMissingParams asks for every parameter the flags did not cover.
// EOF leaves the remaining parameters empty so filter queries can still
// run unfiltered; Ctrl-C aborts the command.
func promptMissingParams(cmd *cobra.Command, entry catalog.Entry, raw map[string]string) error {
	var missing []catalog.Param
	for _, p := range entry.Params {
		if _, ok := raw[p.Name]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
		InterruptPrompt: "^C",
	})
	if err != nil {
		return fmt.Errorf("failed to open prompt: %w", err)
	}
	defer func() { _ = rl.Close() }()

	for _, p := range missing {
		label := p.Prompt
		if entry.Filterable {
			label += " (enter to skip)"
		}
		rl.SetPrompt(label + ": ")

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			return fmt.Errorf("cancelled")
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		raw[p.Name] = strings.TrimSpace(line)
	}
	return nil
}

// resolveFormat picks the result format: the flag wins, otherwise the
// renderer's effective mode decides so that -o json flows through.
func resolveFormat(r *output.Renderer, flag string) (render.Format, error) {
	if flag != "" {
		return render.ParseFormat(flag)
	}
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return render.FormatJSON, nil
	case output.ModeMarkdown:
		return render.FormatMarkdown, nil
	default:
		return render.FormatTable, nil
	}
}

// renderRunChart draws the entry's chart below the table. Chart problems
// never fail the command, the tabular result already made it out.
func renderRunChart(r *output.Renderer, entry catalog.Entry, result *exec.Result, format render.Format) {
	if !render.HasChart(entry.Analysis) {
		r.Warning(fmt.Sprintf("query %d has no chart view", entry.ID))
		return
	}
	if format != render.FormatTable {
		r.Warning("charts only accompany table output")
		return
	}

	chart, err := render.Chart(result, entry.Analysis, chartWidth, chartHeight)
	if err != nil {
		r.Warning(err.Error())
		return
	}
	r.Println("")
	r.Println(chart)
}
