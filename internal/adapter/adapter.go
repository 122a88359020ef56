// Package adapter provides the database drivers behind one interface:
// connect, query with bound arguments, bulk CSV load, and table metadata.
// Drivers register themselves at init time and are selected by name.
package adapter

import (
	"context"
	"database/sql"
	"fmt"
)

// Config holds the connection settings for a database.
type Config struct {
	// Driver selects the adapter ("postgres", "duckdb", "sqlite").
	Driver string

	// Path is the database file for file-based drivers. ":memory:" gives an
	// in-memory database.
	Path string

	// Host is the server hostname for network drivers.
	Host string

	// Port is the server port for network drivers.
	Port int

	// Database is the database name.
	Database string

	// Username for authentication.
	Username string

	// Password for authentication.
	Password string

	// SSLMode is the Postgres sslmode setting. Defaults to "disable".
	SSLMode string
}

// Column describes one column of a table.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Position int
}

// Metadata describes a table: its columns in ordinal order and a row count.
type Metadata struct {
	Schema   string
	Name     string
	Columns  []Column
	RowCount int64
}

// Rows wraps sql.Rows to provide a consistent interface across adapters.
type Rows struct {
	*sql.Rows
}

// ConnectionError reports a failure to establish or verify a database
// connection.
type ConnectionError struct {
	Driver string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to %s: %v", e.Driver, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Adapter is the interface all database drivers implement.
type Adapter interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, sqlText string, args ...any) error

	// Query runs a statement and returns its rows. The caller owns the rows
	// and must close them.
	Query(ctx context.Context, sqlText string, args ...any) (*Rows, error)

	// TableMetadata returns column and row count information for a table.
	TableMetadata(ctx context.Context, table string) (*Metadata, error)

	// LoadCSV replaces the named table with the contents of a CSV file and
	// returns the number of rows loaded.
	LoadCSV(ctx context.Context, tableName, filePath string) (int64, error)

	// DialectName names the SQL dialect this adapter speaks.
	DialectName() string
}
