package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDuckDBAdapter_ConnectInMemory(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	err := adapter.Connect(ctx, Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to connect to in-memory DuckDB: %v", err)
	}
	defer adapter.Close()
}

func TestDuckDBAdapter_ConnectFileBased(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	// Create a temporary file for the database
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.duckdb")

	err := adapter.Connect(ctx, Config{Path: dbPath})
	if err != nil {
		t.Fatalf("failed to connect to file-based DuckDB: %v", err)
	}
	defer adapter.Close()

	// Verify the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestDuckDBAdapter_Exec(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	if err := adapter.Connect(ctx, Config{Path: ":memory:"}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer adapter.Close()

	// Create a table
	err := adapter.Exec(ctx, `
		CREATE TABLE listings (
			id INTEGER PRIMARY KEY,
			name VARCHAR,
			price DOUBLE
		)
	`)
	if err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	// Insert data
	err = adapter.Exec(ctx, `
		INSERT INTO listings VALUES
			(1, 'Sunny loft', 450.50),
			(2, 'Quiet room', 80.75),
			(3, 'Sea view villa', 1200.25)
	`)
	if err != nil {
		t.Fatalf("failed to insert data: %v", err)
	}
}

func TestDuckDBAdapter_Query(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	if err := adapter.Connect(ctx, Config{Path: ":memory:"}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer adapter.Close()

	// Create and populate a table
	if err := adapter.Exec(ctx, `CREATE TABLE listings (id INTEGER, name VARCHAR)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	if err := adapter.Exec(ctx, `INSERT INTO listings VALUES (1, 'Sunny loft'), (2, 'Quiet room')`); err != nil {
		t.Fatalf("failed to insert data: %v", err)
	}

	// Query the data
	rows, err := adapter.Query(ctx, `SELECT id, name FROM listings ORDER BY id`)
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	defer rows.Close()

	expected := []struct {
		id   int
		name string
	}{
		{1, "Sunny loft"},
		{2, "Quiet room"},
	}

	i := 0
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			t.Fatalf("failed to scan row: %v", err)
		}

		if i >= len(expected) {
			t.Fatalf("unexpected extra row: id=%d, name=%s", id, name)
		}

		if id != expected[i].id || name != expected[i].name {
			t.Errorf("row %d: got (%d, %s), want (%d, %s)",
				i, id, name, expected[i].id, expected[i].name)
		}
		i++
	}

	if i != len(expected) {
		t.Errorf("got %d rows, want %d", i, len(expected))
	}
}

func TestDuckDBAdapter_QueryWithArgs(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	if err := adapter.Connect(ctx, Config{Path: ":memory:"}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer adapter.Close()

	if err := adapter.Exec(ctx, `CREATE TABLE listings (name VARCHAR, price DOUBLE)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if err := adapter.Exec(ctx, `INSERT INTO listings VALUES ('Sunny loft', 450.0), ('Sea view villa', 1200.0)`); err != nil {
		t.Fatalf("failed to insert data: %v", err)
	}

	rows, err := adapter.Query(ctx, `SELECT name FROM listings WHERE price <= ?`, 500.0)
	if err != nil {
		t.Fatalf("failed to query with args: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan row: %v", err)
		}
		names = append(names, name)
	}

	if len(names) != 1 || names[0] != "Sunny loft" {
		t.Errorf("got %v, want [Sunny loft]", names)
	}
}

func TestDuckDBAdapter_TableMetadata(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	if err := adapter.Connect(ctx, Config{Path: ":memory:"}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer adapter.Close()

	// Create a table
	if err := adapter.Exec(ctx, `
		CREATE TABLE listings (
			id INTEGER NOT NULL,
			name VARCHAR,
			price DOUBLE,
			instant_bookable BOOLEAN
		)
	`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	// Insert some data
	if err := adapter.Exec(ctx, `
		INSERT INTO listings VALUES
			(1, 'Sunny loft', 450.50, true),
			(2, 'Quiet room', 80.75, false)
	`); err != nil {
		t.Fatalf("failed to insert data: %v", err)
	}

	// Get metadata
	metadata, err := adapter.TableMetadata(ctx, "listings")
	if err != nil {
		t.Fatalf("failed to get metadata: %v", err)
	}

	// Verify metadata
	if metadata.Name != "listings" {
		t.Errorf("got table name %q, want %q", metadata.Name, "listings")
	}

	if metadata.Schema != "main" {
		t.Errorf("got schema %q, want %q", metadata.Schema, "main")
	}

	if len(metadata.Columns) != 4 {
		t.Errorf("got %d columns, want 4", len(metadata.Columns))
	}

	if metadata.RowCount != 2 {
		t.Errorf("got row count %d, want 2", metadata.RowCount)
	}

	// Check specific columns
	expectedColumns := map[string]string{
		"id":               "INTEGER",
		"name":             "VARCHAR",
		"price":            "DOUBLE",
		"instant_bookable": "BOOLEAN",
	}

	for _, col := range metadata.Columns {
		expectedType, ok := expectedColumns[col.Name]
		if !ok {
			t.Errorf("unexpected column: %s", col.Name)
			continue
		}
		if col.Type != expectedType {
			t.Errorf("column %s: got type %q, want %q", col.Name, col.Type, expectedType)
		}
	}
}

func TestDuckDBAdapter_TableMetadata_NotFound(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	if err := adapter.Connect(ctx, Config{Path: ":memory:"}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer adapter.Close()

	_, err := adapter.TableMetadata(ctx, "nonexistent_table")
	if err == nil {
		t.Error("expected error for nonexistent table, got nil")
	}
}

func TestDuckDBAdapter_LoadCSV(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	if err := adapter.Connect(ctx, Config{Path: ":memory:"}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer adapter.Close()

	// Create a temporary CSV file
	tmpDir := t.TempDir()
	csvPath := filepath.Join(tmpDir, "listings.csv")

	csvContent := `name,neighbourhood,price
Sunny loft,Gardens,450.50
Quiet room,Woodstock,80.75
Sea view villa,Camps Bay,1200.25`

	if err := os.WriteFile(csvPath, []byte(csvContent), 0644); err != nil {
		t.Fatalf("failed to write CSV file: %v", err)
	}

	// Load the CSV
	count, err := adapter.LoadCSV(ctx, "listings", csvPath)
	if err != nil {
		t.Fatalf("failed to load CSV: %v", err)
	}
	if count != 3 {
		t.Errorf("got %d loaded rows, want 3", count)
	}

	// Verify the data was loaded
	rows, err := adapter.Query(ctx, "SELECT COUNT(*) FROM listings")
	if err != nil {
		t.Fatalf("failed to query loaded data: %v", err)
	}
	defer rows.Close()

	var queried int
	if rows.Next() {
		if err := rows.Scan(&queried); err != nil {
			t.Fatalf("failed to scan count: %v", err)
		}
	}

	if queried != 3 {
		t.Errorf("got %d rows, want 3", queried)
	}

	// Verify metadata
	metadata, err := adapter.TableMetadata(ctx, "listings")
	if err != nil {
		t.Fatalf("failed to get metadata: %v", err)
	}

	if len(metadata.Columns) != 3 {
		t.Errorf("got %d columns, want 3", len(metadata.Columns))
	}
}

func TestDuckDBAdapter_LoadCSVReplaces(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	if err := adapter.Connect(ctx, Config{Path: ":memory:"}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer adapter.Close()

	tmpDir := t.TempDir()
	csvPath := filepath.Join(tmpDir, "listings.csv")

	if err := os.WriteFile(csvPath, []byte("name,price\nSunny loft,450.50\nQuiet room,80.75\n"), 0644); err != nil {
		t.Fatalf("failed to write CSV file: %v", err)
	}
	if _, err := adapter.LoadCSV(ctx, "listings", csvPath); err != nil {
		t.Fatalf("failed to load CSV: %v", err)
	}

	// A second load of a smaller file must replace, not append.
	if err := os.WriteFile(csvPath, []byte("name,price\nOnly one,50.00\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite CSV file: %v", err)
	}
	count, err := adapter.LoadCSV(ctx, "listings", csvPath)
	if err != nil {
		t.Fatalf("failed to reload CSV: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d rows after reload, want 1", count)
	}
}

func TestDuckDBAdapter_ExecWithoutConnect(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	err := adapter.Exec(ctx, "SELECT 1")
	if err == nil {
		t.Error("expected error when executing without connection, got nil")
	}
}

func TestDuckDBAdapter_QueryWithoutConnect(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	_, err := adapter.Query(ctx, "SELECT 1")
	if err == nil {
		t.Error("expected error when querying without connection, got nil")
	}
}

func TestDuckDBAdapter_Close(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	// Close without connect should not error
	if err := adapter.Close(); err != nil {
		t.Errorf("close without connect should not error: %v", err)
	}

	// Connect and close
	if err := adapter.Connect(ctx, Config{Path: ":memory:"}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	if err := adapter.Close(); err != nil {
		t.Errorf("failed to close: %v", err)
	}
}

func TestDuckDBAdapter_GroupedQuery(t *testing.T) {
	ctx := context.Background()
	adapter := NewDuckDBAdapter(nil)

	if err := adapter.Connect(ctx, Config{Path: ":memory:"}); err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer adapter.Close()

	if err := adapter.Exec(ctx, `
		CREATE TABLE listings (
			neighbourhood VARCHAR,
			price DOUBLE,
			number_of_reviews INTEGER
		)
	`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	if err := adapter.Exec(ctx, `
		INSERT INTO listings VALUES
			('Gardens', 450.0, 12),
			('Gardens', 350.0, 8),
			('Woodstock', 80.0, 3)
	`); err != nil {
		t.Fatalf("failed to insert listings: %v", err)
	}

	// Run an aggregation of the shape the canned queries use
	rows, err := adapter.Query(ctx, `
		SELECT
			neighbourhood,
			AVG(price) as avg_price,
			SUM(number_of_reviews) as total_reviews
		FROM listings
		GROUP BY neighbourhood
		ORDER BY avg_price DESC
	`)
	if err != nil {
		t.Fatalf("failed to run grouped query: %v", err)
	}
	defer rows.Close()

	results := make(map[string]float64)
	for rows.Next() {
		var neighbourhood string
		var avg float64
		var total int
		if err := rows.Scan(&neighbourhood, &avg, &total); err != nil {
			t.Fatalf("failed to scan row: %v", err)
		}
		results[neighbourhood] = avg
	}

	if results["Gardens"] != 400.0 {
		t.Errorf("Gardens average: got %.2f, want 400.00", results["Gardens"])
	}

	if results["Woodstock"] != 80.0 {
		t.Errorf("Woodstock average: got %.2f, want 80.00", results["Woodstock"])
	}
}
