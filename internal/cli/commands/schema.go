package commands

import (
	"fmt"

	"github.com/airlens/airlens/internal/adapter"
	"github.com/airlens/airlens/internal/cli/output"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// SchemaOptions holds options for the schema command.
type SchemaOptions struct {
	Format string // Output format: text, json, markdown
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	opts := &SchemaOptions{}
	cmd := &cobra.Command{
		Use:   "schema [table]",
		Short: "Show the columns and row count of a table",
		Long: `Show the column names, types, nullability and row count of a table.

Defaults to the configured listings table when no table is given.`,
		Example: `  # Describe the configured table
  airlens schema

  # Describe another table
  airlens schema hosts

  # Machine-readable output
  airlens schema --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

func runSchema(cmd *cobra.Command, args []string, opts *SchemaOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer

	// Override renderer if format flag is set
	if opts.Format != "" {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
	}

	tbl := cmdCtx.Cfg.Table
	if len(args) > 0 {
		tbl = args[0]
	}

	meta, err := cmdCtx.Adapter.TableMetadata(cmd.Context(), tbl)
	if err != nil {
		return fmt.Errorf("failed to read table metadata: %w", err)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(schemaOutput(meta))
	case output.ModeMarkdown:
		return renderSchemaMarkdown(r, meta)
	default:
		return renderSchemaText(r, meta)
	}
}

func schemaOutput(meta *adapter.Metadata) output.SchemaOutput {
	out := output.SchemaOutput{
		Schema:   meta.Schema,
		Table:    meta.Name,
		RowCount: meta.RowCount,
		Columns:  make([]output.ColumnInfo, 0, len(meta.Columns)),
	}
	for _, c := range meta.Columns {
		out.Columns = append(out.Columns, output.ColumnInfo{
			Name:     c.Name,
			Type:     c.Type,
			Nullable: c.Nullable,
		})
	}
	return out
}

// renderSchemaText outputs the table description in styled text format.
func renderSchemaText(r *output.Renderer, meta *adapter.Metadata) error {
	r.Println("")
	r.Header(1, fmt.Sprintf("Table %s", meta.Name))
	r.Println(r.Styles().Bold.Render("Rows:") + " " + fmt.Sprintf("%d", meta.RowCount))
	r.Println("")

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"column", "type", "nullable"})
	for _, c := range meta.Columns {
		t.AppendRow(table.Row{c.Name, c.Type, yesNo(c.Nullable)})
	}
	t.Render()
	r.Println("")

	return nil
}

// renderSchemaMarkdown outputs the table description in markdown format.
func renderSchemaMarkdown(r *output.Renderer, meta *adapter.Metadata) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Table %s", meta.Name)))
	r.Println("")
	r.Println(output.FormatKeyValue("Rows", fmt.Sprintf("%d", meta.RowCount)))
	r.Println("")
	r.Println("| Column | Type | Nullable |")
	r.Println("| --- | --- | --- |")
	for _, c := range meta.Columns {
		r.Printf("| %s | %s | %s |\n", c.Name, c.Type, yesNo(c.Nullable))
	}
	r.Println("")

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
