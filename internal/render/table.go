// Package render turns collected query results into terminal output:
// tables in several encodings, plus bar and scatter charts for entries
// that declare an analysis.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/airlens/airlens/internal/exec"
)

// Format selects the result encoding.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat resolves a user-supplied format name. The empty string means
// the default table format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown output format %q (expected table, json, csv or markdown)", s)
}

// countPrinter groups digits in row counts ("20,030 rows").
var countPrinter = message.NewPrinter(language.English)

// Results writes the result to w in the requested format.
func Results(w io.Writer, result *exec.Result, format Format) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatCSV:
		return renderCSV(w, result)
	case FormatMarkdown:
		return renderMarkdown(w, result)
	default:
		return renderTable(w, result)
	}
}

// TableString renders the default table format into a string, for callers
// that place results inside another layout.
func TableString(result *exec.Result) string {
	var sb strings.Builder
	_ = renderTable(&sb, result)
	return sb.String()
}

func renderTable(w io.Writer, result *exec.Result) error {
	if result.RowCount == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	cols := result.ColumnNames()
	headerRow := make(table.Row, len(cols))
	for i, col := range cols {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, values := range result.Rows {
		row := make(table.Row, len(cols))
		for i := range cols {
			row[i] = formatValue(values[i])
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = countPrinter.Fprintf(w, "(%d rows)\n", result.RowCount)
	return nil
}

func renderJSON(w io.Writer, result *exec.Result) error {
	cols := result.ColumnNames()
	results := make([]map[string]any, 0, result.RowCount)
	for _, values := range result.Rows {
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderCSV(w io.Writer, result *exec.Result) error {
	cols := result.ColumnNames()
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))

	for _, values := range result.Rows {
		fields := make([]string, len(cols))
		for i := range cols {
			fields[i] = escapeCSV(formatValue(values[i]))
		}
		_, _ = fmt.Fprintln(w, strings.Join(fields, ","))
	}
	return nil
}

func renderMarkdown(w io.Writer, result *exec.Result) error {
	if result.RowCount == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	cols := result.ColumnNames()
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))

	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, values := range result.Rows {
		fields := make([]string, len(cols))
		for i := range cols {
			fields[i] = formatValue(values[i])
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(fields, " | "))
	}
	return nil
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
