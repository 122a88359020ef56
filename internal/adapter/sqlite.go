package adapter

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // sqlite driver
)

func init() {
	Register("sqlite", func(logger *slog.Logger) Adapter { return NewSQLiteAdapter(logger) })
}

// SQLiteAdapter implements the Adapter interface for SQLite using the
// pure-Go modernc driver.
type SQLiteAdapter struct {
	db     *sql.DB
	config Config
	logger *slog.Logger
}

// NewSQLiteAdapter creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func NewSQLiteAdapter(logger *slog.Logger) *SQLiteAdapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteAdapter{logger: logger}
}

// DialectName returns the SQL dialect for this adapter.
func (a *SQLiteAdapter) DialectName() string { return "sqlite" }

// Connect opens the SQLite database file.
// Use ":memory:" as the path for an in-memory database.
func (a *SQLiteAdapter) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.logger.Debug("opening sqlite database", slog.String("path", path))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &ConnectionError{Driver: "sqlite", Err: err}
	}

	// An in-memory database exists per connection; pin the pool to a
	// single connection so every statement sees the same tables.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return &ConnectionError{Driver: "sqlite", Err: err}
	}

	a.db = db
	a.config = cfg
	return nil
}

// Close closes the SQLite connection.
func (a *SQLiteAdapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ping verifies the connection is alive.
func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("database connection not established")
	}
	if err := a.db.PingContext(ctx); err != nil {
		return &ConnectionError{Driver: "sqlite", Err: err}
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (a *SQLiteAdapter) Exec(ctx context.Context, sqlText string, args ...any) error {
	if a.db == nil {
		return fmt.Errorf("database connection not established")
	}
	if _, err := a.db.ExecContext(ctx, sqlText, args...); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (a *SQLiteAdapter) Query(ctx context.Context, sqlText string, args ...any) (*Rows, error) {
	if a.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := a.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &Rows{Rows: rows}, nil
}

// TableMetadata retrieves metadata for a specified table.
func (a *SQLiteAdapter) TableMetadata(ctx context.Context, table string) (*Metadata, error) {
	if a.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	ident := sanitizeIdentifier(table)
	rows, err := a.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", ident))
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dfltVal sql.NullString
			primary int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltVal, &primary); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		columns = append(columns, Column{
			Name:     name,
			Type:     colType,
			Nullable: notNull == 0,
			Position: cid + 1,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	var rowCount int64
	if err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+ident).Scan(&rowCount); err != nil { //nolint:gosec // identifier is sanitized
		rowCount = 0
	}

	return &Metadata{
		Schema:   "main",
		Name:     table,
		Columns:  columns,
		RowCount: rowCount,
	}, nil
}

// LoadCSV replaces a table with CSV contents and returns the row count.
// Column types are inferred from a sample of the file so numeric filters
// compare numbers rather than text.
func (a *SQLiteAdapter) LoadCSV(ctx context.Context, tableName, filePath string) (int64, error) {
	if a.db == nil {
		return 0, fmt.Errorf("database connection not established")
	}

	columns, err := inferCSVColumns(filePath)
	if err != nil {
		return 0, err
	}

	ident := sanitizeIdentifier(tableName)
	if err := a.createTable(ctx, ident, columns); err != nil {
		return 0, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil { // skip header
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertStatement(ident, columns))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var count int64
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read CSV record: %w", err)
		}

		args := make([]any, len(columns))
		for i := range columns {
			if i < len(record) {
				args[i] = convertCSVValue(record[i], columns[i].Kind)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("failed to insert row %d: %w", count+1, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit load: %w", err)
	}

	a.logger.Info("loaded CSV into sqlite",
		slog.String("table", tableName), slog.Int64("rows", count))
	return count, nil
}

func (a *SQLiteAdapter) createTable(ctx context.Context, ident string, columns []csvColumn) error {
	if err := a.Exec(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return fmt.Errorf("failed to drop existing table: %w", err)
	}

	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = fmt.Sprintf("%s %s", sanitizeIdentifier(col.Name), sqliteType(col.Kind))
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", ident, strings.Join(defs, ", "))
	if err := a.Exec(ctx, create); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func insertStatement(ident string, columns []csvColumn) string {
	names := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		names[i] = sanitizeIdentifier(col.Name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ident, strings.Join(names, ", "), strings.Join(marks, ", "))
}

func sqliteType(kind csvKind) string {
	switch kind {
	case csvInteger:
		return "INTEGER"
	case csvFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// convertCSVValue turns a CSV cell into a typed bind value.
// Empty cells become NULL; unparseable numerics fall back to text.
func convertCSVValue(raw string, kind csvKind) any {
	if raw == "" {
		return nil
	}
	switch kind {
	case csvInteger:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	case csvFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}

// Ensure SQLiteAdapter implements Adapter interface
var _ Adapter = (*SQLiteAdapter)(nil)
