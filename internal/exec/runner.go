// Package exec runs prepared statements against a database adapter without
// blocking the caller. Every submission gets a monotonically increasing
// sequence number; a submission that has been overtaken by a newer one is
// reported as stale so the caller can discard its result instead of
// displaying it. Running queries are never cancelled mid-flight, they are
// superseded.
package exec

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/airlens/airlens/internal/adapter"
	"github.com/airlens/airlens/internal/dialect"
	"github.com/airlens/airlens/internal/query"
)

// Querier is the slice of the adapter surface the runner needs.
type Querier interface {
	Query(ctx context.Context, sqlText string, args ...any) (*adapter.Rows, error)
}

// Column describes one column of a collected result.
type Column struct {
	Name string
	Type string
}

// Result holds a fully collected query result, detached from the
// database connection.
type Result struct {
	Columns  []Column
	Rows     [][]any
	RowCount int
}

// ColumnNames returns the column names in order.
func (r *Result) ColumnNames() []string {
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
func (r *Result) ColumnIndex(name string) int {
	for i, c := range r.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ExecutionError wraps a database error raised while running a statement.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Invocation identifies one submitted statement.
type Invocation struct {
	Seq     uint64
	ID      string
	Started time.Time
}

// Completion is the single terminal event of an invocation. Exactly one of
// Result and Err is set; a failed query never carries partial rows.
type Completion struct {
	Invocation Invocation
	Result     *Result
	Err        error
	Elapsed    time.Duration
}

// Runner executes statements asynchronously against one adapter.
type Runner struct {
	querier Querier
	dialect *dialect.Dialect
	logger  *slog.Logger
	seq     atomic.Uint64
}

// NewRunner creates a runner bound to a querier and its SQL dialect.
// If logger is nil, a discard logger is used.
func NewRunner(q Querier, d *dialect.Dialect, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{querier: q, dialect: d, logger: logger}
}

// Dispatch submits a statement and returns immediately. The returned channel
// is buffered and receives exactly one Completion, so an abandoned
// invocation never blocks its worker goroutine.
func (r *Runner) Dispatch(ctx context.Context, stmt query.Statement) (Invocation, <-chan Completion) {
	inv := Invocation{
		Seq:     r.seq.Add(1),
		ID:      uuid.New().String(),
		Started: time.Now(),
	}
	done := make(chan Completion, 1)

	r.logger.Debug("dispatching query",
		slog.Uint64("seq", inv.Seq), slog.String("id", inv.ID))

	go func() {
		result, err := r.execute(ctx, stmt)
		elapsed := time.Since(inv.Started)

		if err != nil {
			r.logger.Error("query failed",
				slog.Uint64("seq", inv.Seq),
				slog.Duration("elapsed", elapsed),
				slog.Any("error", err))
		} else {
			r.logger.Info("query completed",
				slog.Uint64("seq", inv.Seq),
				slog.Int("rows", result.RowCount),
				slog.Duration("elapsed", elapsed))
		}

		done <- Completion{Invocation: inv, Result: result, Err: err, Elapsed: elapsed}
		close(done)
	}()

	return inv, done
}

// Run submits a statement and waits for its completion or context
// cancellation. The query keeps running to completion in the background if
// the context fires first.
func (r *Runner) Run(ctx context.Context, stmt query.Statement) (*Result, error) {
	_, done := r.Dispatch(ctx, stmt)
	select {
	case c := <-done:
		return c.Result, c.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Latest returns the sequence number of the most recently dispatched
// invocation, or zero if nothing has been dispatched.
func (r *Runner) Latest() uint64 { return r.seq.Load() }

// Stale reports whether the invocation has been superseded by a newer one.
func (r *Runner) Stale(inv Invocation) bool { return inv.Seq != r.Latest() }

func (r *Runner) execute(ctx context.Context, stmt query.Statement) (*Result, error) {
	sqlText, args, err := dialect.Prepare(stmt, r.dialect)
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}

	rows, err := r.querier.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}
	defer func() { _ = rows.Close() }()

	result, err := collect(rows)
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}
	return result, nil
}

// collect drains the rows into a detached Result.
func collect(rows *adapter.Rows) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	columns := make([]Column, len(cols))
	for i, name := range cols {
		columns[i] = Column{Name: name}
	}
	// Drivers that don't report type names leave Type empty.
	if colTypes, err := rows.ColumnTypes(); err == nil && len(colTypes) == len(columns) {
		for i, ct := range colTypes {
			columns[i].Type = ct.DatabaseTypeName()
		}
	}

	var collected [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		valuePtrs := make([]any, len(cols))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		for i, val := range values {
			// Convert []byte to string for readability
			if b, ok := val.([]byte); ok {
				values[i] = string(b)
			}
		}
		collected = append(collected, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Result{Columns: columns, Rows: collected, RowCount: len(collected)}, nil
}
