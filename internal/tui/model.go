// Package tui is the full-screen catalog explorer. It drives the async
// query runner from a bubbletea event loop: picking an entry, filling its
// parameters, and flipping results between table and chart view.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/airlens/airlens/internal/catalog"
	"github.com/airlens/airlens/internal/exec"
	"github.com/airlens/airlens/internal/query"
	"github.com/airlens/airlens/internal/render"
)

type state int

const (
	stateBrowsing state = iota
	stateEditing
	stateRunning
	stateResults
	stateError
)

// Model is the explorer's state machine.
type Model struct {
	ctx    context.Context
	runner *exec.Runner
	logger *slog.Logger

	state   state
	entries []catalog.Entry
	cursor  int

	// Selected entry and its parameter form.
	entry   catalog.Entry
	fields  []query.Field
	inputs  []textinput.Model
	focus   int
	editErr string
	binds   query.Bindings

	// Sort and chart state for the current entry.
	sortIdx  int // -1 means the template's own order
	desc     bool
	chartOn  bool
	chartErr string

	spin     spinner.Model
	result   *exec.Result
	elapsed  time.Duration
	viewport viewport.Model
	runErr   error

	width  int
	height int
	ready  bool
	keys   keyMap
	help   help.Model
}

// completionMsg delivers one runner completion into the event loop.
type completionMsg exec.Completion

func waitFor(done <-chan exec.Completion) tea.Cmd {
	return func() tea.Msg { return completionMsg(<-done) }
}

// Run opens the explorer and blocks until the user quits.
func Run(ctx context.Context, runner *exec.Runner, logger *slog.Logger) error {
	m := NewModel(runner, logger)
	m.ctx = ctx
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// NewModel creates an explorer over the full catalog.
func NewModel(runner *exec.Runner, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		ctx:      context.Background(),
		runner:   runner,
		logger:   logger,
		entries:  catalog.All(),
		sortIdx:  -1,
		spin:     sp,
		viewport: viewport.New(80, 20),
		keys:     keys,
		help:     help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case completionMsg:
		return m.handleCompletion(exec.Completion(msg))

	case spinner.TickMsg:
		if m.state == stateRunning {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateBrowsing:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Select):
			return m.selectEntry()
		}
		return m, nil

	case stateEditing:
		// Quit matching is deliberately narrow here, the user is typing
		// free text and "q" must reach the input.
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.state = stateBrowsing
			m.editErr = ""
			return m, nil
		case key.Matches(msg, m.keys.NextField):
			m.setFocus((m.focus + 1) % len(m.inputs))
			return m, textinput.Blink
		case key.Matches(msg, m.keys.PrevField):
			m.setFocus((m.focus - 1 + len(m.inputs)) % len(m.inputs))
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Select):
			if m.focus < len(m.inputs)-1 {
				m.setFocus(m.focus + 1)
				return m, textinput.Blink
			}
			return m.submit()
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd

	case stateRunning:
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			// Abandon: the query keeps running but its completion
			// will be dropped on arrival.
			m.state = stateBrowsing
		}
		return m, nil

	case stateResults:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.state = stateBrowsing
			return m, nil
		case key.Matches(msg, m.keys.Sort):
			if m.sortable() {
				m.sortIdx++
				if m.sortIdx >= len(m.entry.Sortable) {
					m.sortIdx = -1
				}
				return m.dispatch()
			}
			return m, nil
		case key.Matches(msg, m.keys.Direction):
			if m.sortable() && m.sortIdx >= 0 {
				m.desc = !m.desc
				return m.dispatch()
			}
			return m, nil
		case key.Matches(msg, m.keys.Chart):
			if render.HasChart(m.entry.Analysis) {
				m.chartOn = !m.chartOn
				m.chartErr = ""
				m.refreshContent()
			}
			return m, nil
		case key.Matches(msg, m.keys.Edit):
			if len(m.fields) > 0 {
				m.state = stateEditing
				m.setFocus(0)
				return m, textinput.Blink
			}
			return m, nil
		case key.Matches(msg, m.keys.Rerun):
			return m.dispatch()
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case stateError:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			if len(m.fields) > 0 {
				m.state = stateEditing
				m.setFocus(0)
				return m, textinput.Blink
			}
			m.state = stateBrowsing
			return m, nil
		case key.Matches(msg, m.keys.Rerun):
			return m.dispatch()
		}
		return m, nil
	}

	return m, nil
}

// handleCompletion folds a finished run into the model. Superseded and
// abandoned completions are dropped so a slow query can never overwrite
// the results of a newer one.
func (m Model) handleCompletion(c exec.Completion) (tea.Model, tea.Cmd) {
	if m.runner.Stale(c.Invocation) || m.state != stateRunning {
		m.logger.Debug("discarding completion",
			slog.Uint64("seq", c.Invocation.Seq),
			slog.Uint64("latest", m.runner.Latest()))
		return m, nil
	}

	if c.Err != nil {
		m.runErr = c.Err
		m.state = stateError
		return m, nil
	}

	m.result = c.Result
	m.elapsed = c.Elapsed
	m.state = stateResults
	m.chartErr = ""
	m.refreshContent()
	m.viewport.GotoTop()
	return m, nil
}

// selectEntry prepares the entry under the cursor. Entries without
// parameters run straight away, the rest open the parameter form.
func (m Model) selectEntry() (tea.Model, tea.Cmd) {
	m.entry = m.entries[m.cursor]
	m.sortIdx = -1
	m.desc = false
	m.chartOn = false
	m.chartErr = ""
	m.editErr = ""
	m.binds = nil
	m.fields = query.Fields(m.entry)

	m.logger.Debug("entry selected", slog.Int("id", m.entry.ID))

	if len(m.fields) == 0 {
		return m.dispatch()
	}

	m.inputs = make([]textinput.Model, len(m.fields))
	for i, f := range m.fields {
		in := textinput.New()
		in.Prompt = "> "
		in.Placeholder = placeholderFor(f.Param.Kind, m.entry.Filterable)
		in.CharLimit = 64
		in.Width = 32
		m.inputs[i] = in
	}
	m.focus = 0
	m.inputs[0].Focus()
	m.state = stateEditing
	return m, textinput.Blink
}

func placeholderFor(kind catalog.Kind, optional bool) string {
	var hint string
	switch kind {
	case catalog.KindInteger:
		hint = "whole number"
	case catalog.KindFloat:
		hint = "number"
	default:
		hint = "text"
	}
	if optional {
		hint += ", empty to skip"
	}
	return hint
}

// submit validates the form and dispatches. A rejected value keeps the
// form open with focus on the offending field.
func (m Model) submit() (tea.Model, tea.Cmd) {
	raw := make(map[string]string, len(m.fields))
	for i, f := range m.fields {
		raw[f.Param.Name] = m.inputs[i].Value()
	}

	binds, err := query.Coerce(m.entry, raw)
	if err != nil {
		var verr *query.ValidationError
		if errors.As(err, &verr) {
			m.editErr = verr.Reason
			for i, f := range m.fields {
				if f.Param.Name == verr.Field {
					m.setFocus(i)
					break
				}
			}
		} else {
			m.editErr = err.Error()
		}
		return m, nil
	}

	m.editErr = ""
	m.binds = binds
	return m.dispatch()
}

// dispatch builds the statement from the current entry, binds and sort
// state and hands it to the runner. Dispatching again before the previous
// completion arrives supersedes it.
func (m Model) dispatch() (tea.Model, tea.Cmd) {
	sortCol := ""
	if m.sortIdx >= 0 && m.sortIdx < len(m.entry.Sortable) {
		sortCol = m.entry.Sortable[m.sortIdx]
	}
	dir := query.Ascending
	if m.desc {
		dir = query.Descending
	}
	stmt := query.Build(m.entry, m.binds, sortCol, dir)

	_, done := m.runner.Dispatch(m.ctx, stmt)
	m.state = stateRunning
	return m, tea.Batch(m.spin.Tick, waitFor(done))
}

func (m *Model) setFocus(i int) {
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	m.focus = i
	m.inputs[i].Focus()
}

func (m Model) sortable() bool {
	return m.entry.HasOrderBySlot() && len(m.entry.Sortable) > 0
}

// refreshContent fills the viewport with the table or, when toggled, the
// chart. A chart that cannot be drawn falls back to the table and keeps
// the reason for the status line.
func (m *Model) refreshContent() {
	if m.result == nil {
		m.viewport.SetContent("")
		return
	}
	if m.chartOn {
		chart, err := render.Chart(m.result, m.entry.Analysis, m.viewport.Width-2, m.viewport.Height-2)
		if err != nil {
			m.chartErr = err.Error()
			m.chartOn = false
		} else {
			m.viewport.SetContent(chart)
			return
		}
	}
	m.viewport.SetContent(render.TableString(m.result))
}

func (m *Model) layout() {
	const chrome = 5 // header, status and help rows around the body
	h := max(m.height-chrome, 3)
	m.viewport.Width = max(m.width, 20)
	m.viewport.Height = h
	if m.state == stateResults {
		m.refreshContent()
	}
}
