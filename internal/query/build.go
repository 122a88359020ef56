package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/airlens/airlens/internal/catalog"
)

// Build assembles the final statement for an entry: WHERE conditions derived
// from the bound filter parameters, an ORDER BY for the chosen sort column,
// both substituted into the template's slots. Values stay bound; the only
// interpolated identifiers are sortable columns and prefix-stripped parameter
// names, both catalog-controlled vocabularies.
//
// A sort column that is empty or not in the entry's sortable set leaves the
// ORDER BY slot empty rather than failing. Entries without slots run their
// template verbatim.
func Build(e catalog.Entry, binds Bindings, sortColumn string, dir Direction) Statement {
	text := e.SQL

	if e.HasWhereSlot() {
		text = strings.ReplaceAll(text, catalog.WhereSlot, whereClause(e, binds))
	}
	if e.HasOrderBySlot() {
		text = strings.ReplaceAll(text, catalog.OrderBySlot, orderByClause(e, sortColumn, dir))
	}

	return Statement{Text: tidy(text), Binds: binds}
}

// whereClause builds the AND-joined conditions for every binding that is not
// already referenced by the template itself. min_ strips to `col >= :name`,
// max_ to `col <= :name`, anything else becomes an equality match.
func whereClause(e catalog.Entry, binds Bindings) string {
	inTemplate := make(map[string]bool)
	for _, name := range catalog.BindNames(e.SQL) {
		inTemplate[name] = true
	}

	var conditions []string
	for _, b := range binds {
		if inTemplate[b.Name] {
			continue
		}
		column, op := filterOp(b.Name)
		conditions = append(conditions, fmt.Sprintf("%s %s :%s", column, op, b.Name))
	}
	if len(conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conditions, " AND ")
}

func filterOp(name string) (column, op string) {
	switch {
	case strings.HasPrefix(name, "min_"):
		return strings.TrimPrefix(name, "min_"), ">="
	case strings.HasPrefix(name, "max_"):
		return strings.TrimPrefix(name, "max_"), "<="
	default:
		return name, "="
	}
}

func orderByClause(e catalog.Entry, sortColumn string, dir Direction) string {
	if sortColumn == "" || !e.SortableColumn(sortColumn) {
		return ""
	}
	return fmt.Sprintf("ORDER BY %s %s", sortColumn, dir)
}

var (
	blankLines    = regexp.MustCompile(`\n[ \t]*\n+`)
	trailingSpace = regexp.MustCompile(`(?m)[ \t]+$`)
)

// tidy removes the gaps empty slot substitutions leave behind.
func tidy(sqlText string) string {
	sqlText = blankLines.ReplaceAllString(sqlText, "\n")
	sqlText = trailingSpace.ReplaceAllString(sqlText, "")
	return strings.TrimSpace(sqlText)
}
