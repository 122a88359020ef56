package output

// QueryParamInfo describes one query parameter in JSON output.
type QueryParamInfo struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
	Kind   string `json:"kind"`
}

// QueryInfo describes one catalog query in JSON output. SQL is only
// populated in the single-query detail view.
type QueryInfo struct {
	ID          int              `json:"id"`
	Description string           `json:"description"`
	Params      []QueryParamInfo `json:"params"`
	Sortable    []string         `json:"sortable,omitempty"`
	Filterable  bool             `json:"filterable"`
	Chart       string           `json:"chart,omitempty"`
	SQL         string           `json:"sql,omitempty"`
}

// ListSummary aggregates catalog counts.
type ListSummary struct {
	TotalQueries int `json:"total_queries"`
	WithParams   int `json:"with_params"`
	WithCharts   int `json:"with_charts"`
}

// ListOutput is the JSON payload of the list command.
type ListOutput struct {
	Queries []QueryInfo `json:"queries"`
	Summary ListSummary `json:"summary"`
}

// ColumnInfo describes one table column in JSON output.
type ColumnInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// SchemaOutput is the JSON payload of the schema command.
type SchemaOutput struct {
	Schema   string       `json:"schema,omitempty"`
	Table    string       `json:"table"`
	RowCount int64        `json:"row_count"`
	Columns  []ColumnInfo `json:"columns"`
}
