package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/airlens/airlens/internal/catalog"
	"github.com/airlens/airlens/internal/cli/output"
	"github.com/spf13/cobra"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	Format string // Output format: text, json, markdown
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}
	cmd := &cobra.Command{
		Use:   "list [query-id]",
		Short: "List the canned queries",
		Long: `List every canned query in the catalog with its parameters.

Pass a query id to see its full detail, including the SQL template,
parameter prompts and sortable columns.

Output adapts to environment:
  - Terminal: Styled, colored output
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all queries
  airlens list

  # Show details for query 6
  airlens list 6

  # List queries as JSON
  airlens list --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showQuery(cmd, args[0], opts)
			}
			return listQueries(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

func listQueries(cmd *cobra.Command, opts *ListOptions) error {
	cmdCtx := NewCommandContextWithoutDB(cmd)
	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	entries := catalog.All()

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listQueriesJSON(r, entries)
	case output.ModeMarkdown:
		return listQueriesMarkdown(r, entries)
	default:
		return listQueriesText(r, entries)
	}
}

// listQueriesText outputs the catalog in styled text format.
func listQueriesText(r *output.Renderer, entries []catalog.Entry) error {
	styles := r.Styles()

	r.Println("")
	r.Header(1, fmt.Sprintf("Queries (%d total)", len(entries)))
	r.Println("")

	for _, e := range entries {
		r.QueryLine(e.ID, e.Description, entryBadges(e))
	}

	r.Println("")
	r.Println(styles.Muted.Render("Use 'airlens run <id>' to execute a query, 'airlens list <id>' for details"))
	r.Println("")

	return nil
}

// listQueriesMarkdown outputs the catalog in markdown format.
func listQueriesMarkdown(r *output.Renderer, entries []catalog.Entry) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Queries (%d total)", len(entries))))
	r.Println("")

	for _, e := range entries {
		r.Println(output.FormatHeader(2, fmt.Sprintf("%d. %s", e.ID, e.Description)))

		if len(e.Params) > 0 {
			params := make([]string, len(e.Params))
			for i, p := range e.Params {
				params[i] = fmt.Sprintf("%s (%s)", p.Name, p.Kind)
			}
			r.Println(output.FormatKeyValue("Parameters", strings.Join(params, ", ")))
		}
		if len(e.Sortable) > 0 {
			r.Println(output.FormatKeyValue("Sortable", strings.Join(e.Sortable, ", ")))
		}
		if e.Filterable {
			r.Println(output.FormatKeyValue("Filters", "optional, prefix min_/max_ for ranges"))
		}
		if e.Analysis != catalog.AnalysisNone {
			r.Println(output.FormatKeyValue("Chart", e.Analysis.String()))
		}

		r.Println("")
	}

	return nil
}

// listQueriesJSON outputs the catalog in JSON format.
func listQueriesJSON(r *output.Renderer, entries []catalog.Entry) error {
	listOutput := output.ListOutput{
		Queries: make([]output.QueryInfo, 0, len(entries)),
		Summary: output.ListSummary{TotalQueries: len(entries)},
	}

	for _, e := range entries {
		listOutput.Queries = append(listOutput.Queries, queryInfo(e, false))
		if len(e.Params) > 0 {
			listOutput.Summary.WithParams++
		}
		if e.Analysis != catalog.AnalysisNone {
			listOutput.Summary.WithCharts++
		}
	}

	return r.JSON(listOutput)
}

func showQuery(cmd *cobra.Command, arg string, opts *ListOptions) error {
	cmdCtx := NewCommandContextWithoutDB(cmd)
	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	id, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid query id %q: expected a number", arg)
	}

	e, err := catalog.Lookup(id)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(queryInfo(e, true))
	case output.ModeMarkdown:
		return showQueryMarkdown(r, e)
	default:
		return showQueryText(r, e)
	}
}

// showQueryText outputs one entry in styled text format.
func showQueryText(r *output.Renderer, e catalog.Entry) error {
	styles := r.Styles()

	r.Println("")
	r.Header(1, fmt.Sprintf("%d. %s", e.ID, e.Description))
	r.Println("")

	if len(e.Params) > 0 {
		r.Header(2, "Parameters")
		for _, p := range e.Params {
			r.Printf("  %s  %s\n", styles.Bold.Render(p.Name), styles.Muted.Render(fmt.Sprintf("(%s) %s", p.Kind, p.Prompt)))
		}
		r.Println("")
	}
	if len(e.Sortable) > 0 {
		r.Header(2, "Sortable columns")
		r.Println("  " + strings.Join(e.Sortable, ", "))
		r.Println("")
	}
	if e.Analysis != catalog.AnalysisNone {
		r.Println(styles.Bold.Render("Chart:") + " " + e.Analysis.String())
		r.Println("")
	}

	r.Header(2, "SQL")
	for _, line := range strings.Split(e.SQL, "\n") {
		r.Println("  " + styles.Muted.Render(line))
	}
	r.Println("")

	return nil
}

// showQueryMarkdown outputs one entry in markdown format.
func showQueryMarkdown(r *output.Renderer, e catalog.Entry) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("%d. %s", e.ID, e.Description)))
	r.Println("")

	if len(e.Params) > 0 {
		r.Println(output.FormatHeader(2, "Parameters"))
		for _, p := range e.Params {
			r.Printf("- `%s` (%s): %s\n", p.Name, p.Kind, p.Prompt)
		}
		r.Println("")
	}
	if len(e.Sortable) > 0 {
		r.Println(output.FormatKeyValue("Sortable", strings.Join(e.Sortable, ", ")))
	}
	if e.Analysis != catalog.AnalysisNone {
		r.Println(output.FormatKeyValue("Chart", e.Analysis.String()))
	}

	r.Println("")
	r.Println("```sql")
	r.Println(e.SQL)
	r.Println("```")
	r.Println("")

	return nil
}

// entryBadges summarizes an entry's extras for the one-line list view.
func entryBadges(e catalog.Entry) []string {
	var badges []string
	switch n := len(e.Params); {
	case n == 1:
		badges = append(badges, "1 param")
	case n > 1:
		badges = append(badges, fmt.Sprintf("%d params", n))
	}
	if len(e.Sortable) > 0 {
		badges = append(badges, "sortable")
	}
	if e.Filterable {
		badges = append(badges, "filters")
	}
	if e.Analysis != catalog.AnalysisNone {
		badges = append(badges, "chart")
	}
	return badges
}

// queryInfo converts an entry to its JSON shape. The SQL template is only
// included in the detail view.
func queryInfo(e catalog.Entry, withSQL bool) output.QueryInfo {
	params := make([]output.QueryParamInfo, 0, len(e.Params))
	for _, p := range e.Params {
		params = append(params, output.QueryParamInfo{
			Name:   p.Name,
			Prompt: p.Prompt,
			Kind:   p.Kind.String(),
		})
	}

	info := output.QueryInfo{
		ID:          e.ID,
		Description: e.Description,
		Params:      params,
		Sortable:    e.Sortable,
		Filterable:  e.Filterable,
	}
	if e.Analysis != catalog.AnalysisNone {
		info.Chart = e.Analysis.String()
	}
	if withSQL {
		info.SQL = e.SQL
	}
	return info
}
