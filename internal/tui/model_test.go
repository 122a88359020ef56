package tui

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlens/airlens/internal/adapter"
	"github.com/airlens/airlens/internal/catalog"
	"github.com/airlens/airlens/internal/dialect"
	"github.com/airlens/airlens/internal/exec"
	"github.com/airlens/airlens/internal/testutil"
)

// stubQuerier adapts a plain *sql.DB to the runner's Querier interface.
type stubQuerier struct{ db *sql.DB }

func (q stubQuerier) Query(ctx context.Context, sqlText string, args ...any) (*adapter.Rows, error) {
	rows, err := q.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	return &adapter.Rows{Rows: rows}, nil
}

func newTestModel(t *testing.T) Model {
	t.Helper()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	d, ok := dialect.Get("sqlite")
	require.True(t, ok, "sqlite dialect must be registered")

	m := NewModel(exec.NewRunner(stubQuerier{db: db}, d, nil), testutil.NewTestLogger(t))
	return apply(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func applyCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func neighbourhoodPriceResult() *exec.Result {
	return &exec.Result{
		Columns: []exec.Column{
			{Name: "neighbourhood", Type: "TEXT"},
			{Name: "average_price", Type: "TEXT"},
			{Name: "avg_price_value", Type: "REAL"},
			{Name: "total_reviews", Type: "INTEGER"},
		},
		Rows: [][]any{
			{"Gardens", "$286.67", 286.67, 253},
			{"Woodstock", "$90.00", 90.0, 552},
			{"Camps Bay", "$1,075.00", 1075.0, 40},
		},
		RowCount: 3,
	}
}

func TestBrowseNavigation(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, stateBrowsing, m.state)
	require.NotEmpty(t, m.entries)

	m = apply(t, m, runeKey('j'))
	m = apply(t, m, runeKey('j'))
	assert.Equal(t, 2, m.cursor)

	m = apply(t, m, runeKey('k'))
	assert.Equal(t, 1, m.cursor)

	// Clamp at the top
	m = apply(t, m, runeKey('k'))
	m = apply(t, m, runeKey('k'))
	assert.Equal(t, 0, m.cursor)

	view := m.View()
	assert.Contains(t, view, m.entries[0].Description)
	assert.Contains(t, view, "▸")
}

func TestSelectParamEntryOpensForm(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, 1, m.entries[0].ID)
	require.Len(t, m.entries[0].Params, 3)

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, stateEditing, m.state)
	require.Len(t, m.inputs, 3)
	assert.Equal(t, 0, m.focus)
	assert.Contains(t, m.View(), "Lowest price")
}

func TestSelectNoParamEntryRuns(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, 3, m.entries[2].ID)
	m.cursor = 2

	m, cmd := applyCmd(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, stateRunning, m.state)
	assert.NotNil(t, cmd)
	assert.Equal(t, uint64(1), m.runner.Latest())
}

func TestFormFieldNavigation(t *testing.T) {
	m := newTestModel(t)
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateEditing, m.state)

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.focus)

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 0, m.focus)

	// Enter advances until the last field
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, m.focus)
	assert.Equal(t, stateEditing, m.state)
}

func TestEditEscReturnsToCatalog(t *testing.T) {
	m := newTestModel(t)
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateEditing, m.state)

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, stateBrowsing, m.state)
}

func TestTypingReachesFocusedInput(t *testing.T) {
	m := newTestModel(t)
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	for _, r := range "120.5" {
		m = apply(t, m, runeKey(r))
	}
	assert.Equal(t, "120.5", m.inputs[0].Value())

	// "q" is text here, not quit
	m = apply(t, m, runeKey('q'))
	assert.Equal(t, stateEditing, m.state)
	assert.Equal(t, "120.5q", m.inputs[0].Value())
}

func TestSubmitRejectsBadInput(t *testing.T) {
	m := newTestModel(t)
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateEditing, m.state)

	m.inputs[0].SetValue("not a number")
	m.inputs[1].SetValue("500")
	m.inputs[2].SetValue("10")
	m.setFocus(2)

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, stateEditing, m.state)
	assert.NotEmpty(t, m.editErr)
	assert.Equal(t, 0, m.focus, "focus should land on the rejected field")

	m.inputs[0].SetValue("50")
	m.setFocus(2)
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, stateRunning, m.state)
	assert.Empty(t, m.editErr)
	require.Len(t, m.binds, 3)
}

func TestCompletionShowsResults(t *testing.T) {
	m := newTestModel(t)
	m.cursor = 2 // query 3, no parameters
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateRunning, m.state)

	c := exec.Completion{
		Invocation: exec.Invocation{Seq: m.runner.Latest()},
		Result:     neighbourhoodPriceResult(),
		Elapsed:    42 * time.Millisecond,
	}
	m = apply(t, m, completionMsg(c))

	assert.Equal(t, stateResults, m.state)
	view := m.View()
	assert.Contains(t, view, "Gardens")
	assert.Contains(t, view, "3 rows")
	assert.Contains(t, view, "42ms")
}

func TestCompletionErrorShowsFailure(t *testing.T) {
	m := newTestModel(t)
	m.cursor = 2
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	c := exec.Completion{
		Invocation: exec.Invocation{Seq: m.runner.Latest()},
		Err:        &exec.ExecutionError{Err: errors.New("no such table: listings")},
	}
	m = apply(t, m, completionMsg(c))

	assert.Equal(t, stateError, m.state)
	assert.Contains(t, m.View(), "no such table")
}

func TestStaleCompletionIgnored(t *testing.T) {
	m := newTestModel(t)
	m.cursor = 2
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, uint64(1), m.runner.Latest())

	// A second dispatch supersedes the first.
	next, _ := m.dispatch()
	m = next.(Model)
	require.Equal(t, uint64(2), m.runner.Latest())

	stale := exec.Completion{
		Invocation: exec.Invocation{Seq: 1},
		Result:     neighbourhoodPriceResult(),
	}
	m = apply(t, m, completionMsg(stale))
	assert.Equal(t, stateRunning, m.state, "stale completion must not surface")
	assert.Nil(t, m.result)

	fresh := exec.Completion{
		Invocation: exec.Invocation{Seq: 2},
		Result:     neighbourhoodPriceResult(),
	}
	m = apply(t, m, completionMsg(fresh))
	assert.Equal(t, stateResults, m.state)
	require.NotNil(t, m.result)
}

func TestAbandonedCompletionIgnored(t *testing.T) {
	m := newTestModel(t)
	m.cursor = 2
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateRunning, m.state)

	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, stateBrowsing, m.state)

	c := exec.Completion{
		Invocation: exec.Invocation{Seq: m.runner.Latest()},
		Result:     neighbourhoodPriceResult(),
	}
	m = apply(t, m, completionMsg(c))
	assert.Equal(t, stateBrowsing, m.state)
	assert.Nil(t, m.result)
}

func TestChartToggle(t *testing.T) {
	m := newTestModel(t)
	entry, err := catalog.Lookup(3)
	require.NoError(t, err)

	m.entry = entry
	m.result = neighbourhoodPriceResult()
	m.state = stateResults
	m.refreshContent()

	m = apply(t, m, runeKey('c'))
	assert.True(t, m.chartOn)
	assert.Contains(t, m.viewport.View(), "Average price by neighbourhood")

	m = apply(t, m, runeKey('c'))
	assert.False(t, m.chartOn)
	assert.Contains(t, m.viewport.View(), "AVERAGE_PRICE")
}

func TestChartFallsBackOnMissingColumn(t *testing.T) {
	m := newTestModel(t)
	entry, err := catalog.Lookup(3)
	require.NoError(t, err)

	m.entry = entry
	m.result = &exec.Result{
		Columns:  []exec.Column{{Name: "neighbourhood", Type: "TEXT"}},
		Rows:     [][]any{{"Gardens"}},
		RowCount: 1,
	}
	m.state = stateResults
	m.refreshContent()

	m = apply(t, m, runeKey('c'))

	assert.False(t, m.chartOn)
	assert.NotEmpty(t, m.chartErr)
	assert.Contains(t, m.viewport.View(), "Gardens", "table stays up when the chart cannot be drawn")
}

func TestChartKeyIgnoredWithoutAnalysis(t *testing.T) {
	m := newTestModel(t)
	entry, err := catalog.Lookup(4)
	require.NoError(t, err)

	m.entry = entry
	m.result = neighbourhoodPriceResult()
	m.state = stateResults
	m.refreshContent()

	m = apply(t, m, runeKey('c'))
	assert.False(t, m.chartOn)
}

func TestSortCycleRedispatches(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, 11, m.entries[10].ID)
	m.cursor = 10
	m = apply(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stateRunning, m.state)

	m = apply(t, m, completionMsg(exec.Completion{
		Invocation: exec.Invocation{Seq: m.runner.Latest()},
		Result:     neighbourhoodPriceResult(),
	}))
	require.Equal(t, stateResults, m.state)

	m = apply(t, m, runeKey('s'))
	assert.Equal(t, 0, m.sortIdx)
	assert.Equal(t, stateRunning, m.state)
	assert.Equal(t, uint64(2), m.runner.Latest())

	m = apply(t, m, completionMsg(exec.Completion{
		Invocation: exec.Invocation{Seq: m.runner.Latest()},
		Result:     neighbourhoodPriceResult(),
	}))

	m = apply(t, m, runeKey('S'))
	assert.True(t, m.desc)
	assert.Equal(t, stateRunning, m.state)
	assert.Equal(t, uint64(3), m.runner.Latest())
}

func TestSortCycleWrapsToTemplateOrder(t *testing.T) {
	m := newTestModel(t)
	entry, err := catalog.Lookup(11)
	require.NoError(t, err)

	m.entry = entry
	m.result = neighbourhoodPriceResult()
	m.state = stateResults
	m.sortIdx = len(entry.Sortable) - 1
	m.refreshContent()

	m = apply(t, m, runeKey('s'))
	assert.Equal(t, -1, m.sortIdx)
}

func TestSortKeysIgnoredWithoutSortSlot(t *testing.T) {
	m := newTestModel(t)
	entry, err := catalog.Lookup(3)
	require.NoError(t, err)

	m.entry = entry
	m.result = neighbourhoodPriceResult()
	m.state = stateResults
	m.refreshContent()

	before := m.runner.Latest()
	m = apply(t, m, runeKey('s'))
	assert.Equal(t, stateResults, m.state)
	assert.Equal(t, before, m.runner.Latest())
}

func TestQuitFromBrowsing(t *testing.T) {
	m := newTestModel(t)
	_, cmd := applyCmd(t, m, runeKey('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestEntryHints(t *testing.T) {
	browse, err := catalog.Lookup(18)
	require.NoError(t, err)
	assert.Equal(t, "7 params, sortable, filters", entryHints(browse))

	charted, err := catalog.Lookup(3)
	require.NoError(t, err)
	assert.Equal(t, "chart", entryHints(charted))

	plain, err := catalog.Lookup(14)
	require.NoError(t, err)
	assert.Equal(t, "", entryHints(plain))
}

func TestWordwrapish(t *testing.T) {
	assert.Equal(t, "aa bb\ncc", wordwrapish("aa bb cc", 5))
	assert.Equal(t, "single", wordwrapish("single", 3))
	assert.Equal(t, "", wordwrapish("", 10))
}
