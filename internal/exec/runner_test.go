package exec

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlens/airlens/internal/adapter"
	"github.com/airlens/airlens/internal/dialect"
	"github.com/airlens/airlens/internal/query"
)

// dbQuerier adapts a plain *sql.DB to the Querier interface.
type dbQuerier struct{ db *sql.DB }

func (q dbQuerier) Query(ctx context.Context, sqlText string, args ...any) (*adapter.Rows, error) {
	rows, err := q.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	return &adapter.Rows{Rows: rows}, nil
}

func newMockRunner(t *testing.T, dialectName string) (*Runner, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	d, ok := dialect.Get(dialectName)
	require.True(t, ok, "dialect %s must be registered", dialectName)

	return NewRunner(dbQuerier{db: db}, d, nil), mock
}

func TestRunner_RunCollectsResult(t *testing.T) {
	runner, mock := newMockRunner(t, "sqlite")

	mock.ExpectQuery("SELECT name, price FROM listings WHERE price <= ?").
		WithArgs(500.0).
		WillReturnRows(sqlmock.NewRows([]string{"name", "price"}).
			AddRow([]byte("Sunny loft"), 450.5).
			AddRow("Quiet room", 80.0))

	stmt := query.Statement{
		Text:  "SELECT name, price FROM listings WHERE price <= :max_price",
		Binds: query.Bindings{{Name: "max_price", Value: 500.0}},
	}

	result, err := runner.Run(context.Background(), stmt)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, []string{"name", "price"}, result.ColumnNames())
	assert.Equal(t, 2, result.RowCount)
	require.Len(t, result.Rows, 2)

	// []byte values come back as strings
	assert.Equal(t, "Sunny loft", result.Rows[0][0])
	assert.Equal(t, 450.5, result.Rows[0][1])
	assert.Equal(t, "Quiet room", result.Rows[1][0])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_RunPositionalBinds(t *testing.T) {
	runner, mock := newMockRunner(t, "postgres")

	mock.ExpectQuery("SELECT name FROM listings WHERE price BETWEEN $1 AND $2").
		WithArgs(100.0, 500.0).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Sunny loft"))

	stmt := query.Statement{
		Text: "SELECT name FROM listings WHERE price BETWEEN :lowest_value AND :highest_value",
		Binds: query.Bindings{
			{Name: "lowest_value", Value: 100.0},
			{Name: "highest_value", Value: 500.0},
		},
	}

	result, err := runner.Run(context.Background(), stmt)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_RunQueryError(t *testing.T) {
	runner, mock := newMockRunner(t, "sqlite")

	mock.ExpectQuery("SELECT nope FROM listings").
		WillReturnError(errors.New("no such column: nope"))

	result, err := runner.Run(context.Background(), query.Statement{Text: "SELECT nope FROM listings"})
	require.Error(t, err)
	assert.Nil(t, result, "a failed query must not carry partial results")

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Error(), "no such column")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_RunUnknownBind(t *testing.T) {
	runner, _ := newMockRunner(t, "sqlite")

	// The statement references a bind that was never provided.
	stmt := query.Statement{Text: "SELECT name FROM listings WHERE price <= :max_price"}

	_, err := runner.Run(context.Background(), stmt)
	require.Error(t, err)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, err.Error(), "max_price")
}

func TestRunner_DispatchDeliversExactlyOnce(t *testing.T) {
	runner, mock := newMockRunner(t, "sqlite")

	mock.ExpectQuery("SELECT 1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	inv, done := runner.Dispatch(context.Background(), query.Statement{Text: "SELECT 1"})
	assert.NotZero(t, inv.Seq)
	assert.NotEmpty(t, inv.ID)

	c, open := <-done
	require.True(t, open, "first receive should deliver the completion")
	require.NoError(t, c.Err)
	assert.Equal(t, inv.Seq, c.Invocation.Seq)
	assert.Equal(t, 1, c.Result.RowCount)
	assert.GreaterOrEqual(t, c.Elapsed, time.Duration(0))

	_, open = <-done
	assert.False(t, open, "channel should be closed after the single completion")
}

func TestRunner_SupersededInvocationIsStale(t *testing.T) {
	runner, mock := newMockRunner(t, "sqlite")

	// The first query is slow and finishes after the second was submitted.
	mock.ExpectQuery("SELECT 'slow'").
		WillDelayFor(50 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow("slow"))
	mock.ExpectQuery("SELECT 'fast'").
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow("fast"))

	first, firstDone := runner.Dispatch(context.Background(), query.Statement{Text: "SELECT 'slow'"})
	second, secondDone := runner.Dispatch(context.Background(), query.Statement{Text: "SELECT 'fast'"})

	assert.True(t, second.Seq > first.Seq, "sequence numbers must increase")

	<-secondDone
	c := <-firstDone
	require.NoError(t, c.Err)

	assert.True(t, runner.Stale(c.Invocation), "overtaken invocation should be stale")
	assert.False(t, runner.Stale(second), "latest invocation should not be stale")
	assert.Equal(t, second.Seq, runner.Latest())
}

func TestRunner_RunHonorsContext(t *testing.T) {
	runner, mock := newMockRunner(t, "sqlite")

	mock.ExpectQuery("SELECT 'slow'").
		WillDelayFor(time.Second).
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow("slow"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := runner.Run(ctx, query.Statement{Text: "SELECT 'slow'"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResult_ColumnIndex(t *testing.T) {
	result := &Result{Columns: []Column{{Name: "name"}, {Name: "price"}}}

	assert.Equal(t, 0, result.ColumnIndex("name"))
	assert.Equal(t, 1, result.ColumnIndex("price"))
	assert.Equal(t, -1, result.ColumnIndex("missing"))
}
