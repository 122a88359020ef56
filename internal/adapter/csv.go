package adapter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// csvKind is the inferred storage type of a CSV column. Inference starts at
// integer and widens to float, then text, as samples disagree.
type csvKind int

const (
	csvInteger csvKind = iota
	csvFloat
	csvText
)

type csvColumn struct {
	Name string
	Kind csvKind
}

// csvSampleRows bounds how much of a file inference reads.
const csvSampleRows = 1000

// inferCSVColumns reads the header and a sample of rows to decide a storage
// type per column. Empty cells are treated as nulls and do not narrow the
// type.
func inferCSVColumns(filePath string) ([]csvColumn, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make([]csvColumn, len(headers))
	for i, h := range headers {
		columns[i] = csvColumn{Name: normalizeColumn(h), Kind: csvInteger}
	}

	for row := 0; row < csvSampleRows; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		for i, cell := range record {
			if i >= len(columns) || cell == "" {
				continue
			}
			switch columns[i].Kind {
			case csvInteger:
				if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
					continue
				}
				columns[i].Kind = csvFloat
				fallthrough
			case csvFloat:
				if _, err := strconv.ParseFloat(cell, 64); err == nil {
					continue
				}
				columns[i].Kind = csvText
			case csvText:
			}
		}
	}
	return columns, nil
}

// normalizeColumn makes a CSV header usable as a column identifier.
func normalizeColumn(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return name
}

// sanitizeIdentifier makes a column name safe for DDL.
func sanitizeIdentifier(name string) string {
	safe := strings.ReplaceAll(name, " ", "_")
	safe = strings.ReplaceAll(safe, "-", "_")
	if strings.ContainsAny(safe, "()[]{}") || isReservedWord(safe) {
		return fmt.Sprintf(`"%s"`, safe)
	}
	return safe
}

// isReservedWord checks if a name is a commonly reserved SQL word.
func isReservedWord(name string) bool {
	reserved := map[string]bool{
		"user": true, "order": true, "group": true, "table": true,
		"select": true, "from": true, "where": true, "index": true,
	}
	return reserved[strings.ToLower(name)]
}
