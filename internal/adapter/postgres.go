package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

func init() {
	Register("postgres", func(logger *slog.Logger) Adapter { return NewPostgresAdapter(logger) })
}

// PostgresAdapter implements the Adapter interface for PostgreSQL using the
// pgx driver through database/sql.
type PostgresAdapter struct {
	db     *sql.DB
	config Config
	logger *slog.Logger
}

// NewPostgresAdapter creates a new PostgreSQL adapter instance.
// If logger is nil, a discard logger is used.
func NewPostgresAdapter(logger *slog.Logger) *PostgresAdapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PostgresAdapter{logger: logger}
}

// DialectName returns the SQL dialect for this adapter.
func (a *PostgresAdapter) DialectName() string { return "postgres" }

// Connect establishes a connection to PostgreSQL.
func (a *PostgresAdapter) Connect(ctx context.Context, cfg Config) error {
	dsn := buildPostgresDSN(cfg)

	a.logger.Debug("connecting to postgres",
		slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return &ConnectionError{Driver: "postgres", Err: err}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return &ConnectionError{Driver: "postgres", Err: err}
	}

	a.db = db
	a.config = cfg
	return nil
}

// buildPostgresDSN constructs a key=value connection string.
func buildPostgresDSN(cfg Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}

// Close closes the PostgreSQL connection.
func (a *PostgresAdapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ping verifies the connection is alive.
func (a *PostgresAdapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("database connection not established")
	}
	if err := a.db.PingContext(ctx); err != nil {
		return &ConnectionError{Driver: "postgres", Err: err}
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (a *PostgresAdapter) Exec(ctx context.Context, sqlText string, args ...any) error {
	if a.db == nil {
		return fmt.Errorf("database connection not established")
	}
	if _, err := a.db.ExecContext(ctx, sqlText, args...); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (a *PostgresAdapter) Query(ctx context.Context, sqlText string, args ...any) (*Rows, error) {
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
func (a *PostgresAdapter) TableMetadata(ctx context.Context, table string) (*Metadata, error) {
	if a.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	schema := "public"
	tableName := table
	if parts := strings.Split(table, "."); len(parts) == 2 {
		schema = parts[0]
		tableName = parts[1]
	}

	query := `
		SELECT
			column_name,
			data_type,
			is_nullable,
			ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := a.db.QueryContext(ctx, query, schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s.%s", schema, pgx.Identifier{tableName}.Sanitize()) //nolint:gosec // identifier is sanitized
	var rowCount int64
	if err := a.db.QueryRowContext(ctx, countQuery).Scan(&rowCount); err != nil {
		rowCount = 0
	}

	return &Metadata{
		Schema:   schema,
		Name:     tableName,
		Columns:  columns,
		RowCount: rowCount,
	}, nil
}

// LoadCSV replaces a table with CSV contents using COPY FROM STDIN. Column
// types are inferred from a sample of the file so numeric filters work on
// the loaded data; empty cells load as NULL.
func (a *PostgresAdapter) LoadCSV(ctx context.Context, tableName, filePath string) (int64, error) {
	if a.db == nil {
		return 0, fmt.Errorf("database connection not established")
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to get absolute path: %w", err)
	}

	columns, err := inferCSVColumns(absPath)
	if err != nil {
		return 0, err
	}
	if err := a.createTypedTable(ctx, tableName, columns); err != nil {
		return 0, fmt.Errorf("failed to create table: %w", err)
	}

	file, err := os.Open(absPath) //nolint:gosec // path comes from the user's own load command
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	count, err := a.copyFromCSV(ctx, tableName, file)
	if err != nil {
		return 0, fmt.Errorf("failed to copy data: %w", err)
	}

	a.logger.Info("loaded CSV into postgres",
		slog.String("table", tableName), slog.Int64("rows", count))
	return count, nil
}

func pgType(k csvKind) string {
	switch k {
	case csvInteger:
		return "BIGINT"
	case csvFloat:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

// createTypedTable drops and recreates the destination table with inferred
// column types.
func (a *PostgresAdapter) createTypedTable(ctx context.Context, tableName string, columns []csvColumn) error {
	ident := pgx.Identifier{tableName}.Sanitize()

	if _, err := a.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+ident); err != nil {
		return err
	}

	colDefs := make([]string, len(columns))
	for i, col := range columns {
		colDefs[i] = fmt.Sprintf("%s %s", sanitizeIdentifier(col.Name), pgType(col.Kind))
	}

	createSQL := fmt.Sprintf("CREATE TABLE %s (%s)", ident, strings.Join(colDefs, ", "))
	_, err := a.db.ExecContext(ctx, createSQL)
	return err
}

// copyFromCSV streams the file through PostgreSQL COPY and returns the
// number of rows written.
func (a *PostgresAdapter) copyFromCSV(ctx context.Context, tableName string, file *os.File) (int64, error) {
	conn, err := a.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var count int64
	err = conn.Raw(func(driverConn any) error {
		pgxConn := driverConn.(*stdlib.Conn).Conn()

		copySQL := fmt.Sprintf("COPY %s FROM STDIN WITH (FORMAT csv, HEADER true, NULL '')",
			pgx.Identifier{tableName}.Sanitize())
		tag, err := pgxConn.PgConn().CopyFrom(ctx, file, copySQL)
		if err != nil {
			return err
		}
		count = tag.RowsAffected()
		return nil
	})
	return count, err
}

// Ensure PostgresAdapter implements Adapter interface
var _ Adapter = (*PostgresAdapter)(nil)
