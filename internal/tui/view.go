package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"

	"github.com/airlens/airlens/internal/catalog"
	"github.com/airlens/airlens/internal/render"
)

func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	var body string
	switch m.state {
	case stateBrowsing:
		body = m.browseView()
	case stateEditing:
		body = m.editView()
	case stateRunning:
		body = m.runningView()
	case stateResults:
		body = m.resultsView()
	case stateError:
		body = m.errorView()
	}

	return m.headerView() + "\n" + body + "\n" + m.helpView()
}

func (m Model) headerView() string {
	title := titleStyle.Render("airlens")
	sub := subtitleStyle.Render(fmt.Sprintf("  %d queries over the listings table", len(m.entries)))
	return title + sub + "\n"
}

func (m Model) browseView() string {
	h := max(m.height-5, 3)
	start := 0
	if m.cursor >= h {
		start = m.cursor - h + 1
	}
	end := min(start+h, len(m.entries))

	var sb strings.Builder
	for i := start; i < end; i++ {
		e := m.entries[i]
		line := fmt.Sprintf("%3d  %s", e.ID, e.Description)
		if b := entryHints(e); b != "" {
			line += "  " + mutedStyle.Render("["+b+"]")
		}
		if i == m.cursor {
			sb.WriteString(selectedStyle.Render("▸ "+line) + "\n")
		} else {
			sb.WriteString("  " + line + "\n")
		}
	}
	return sb.String()
}

// entryHints summarizes what an entry supports, for the catalog list.
func entryHints(e catalog.Entry) string {
	var parts []string
	switch n := len(e.Params); n {
	case 0:
	case 1:
		parts = append(parts, "1 param")
	default:
		parts = append(parts, fmt.Sprintf("%d params", n))
	}
	if e.HasOrderBySlot() && len(e.Sortable) > 0 {
		parts = append(parts, "sortable")
	}
	if e.Filterable {
		parts = append(parts, "filters")
	}
	if render.HasChart(e.Analysis) {
		parts = append(parts, "chart")
	}
	return strings.Join(parts, ", ")
}

func (m Model) editView() string {
	var sb strings.Builder
	sb.WriteString(labelStyle.Render(fmt.Sprintf("Query %d: %s", m.entry.ID, m.entry.Description)))
	sb.WriteString("\n\n")

	for i, f := range m.fields {
		marker := "  "
		if i == m.focus {
			marker = selectedStyle.Render("▸ ")
		}
		sb.WriteString(marker + f.Param.Prompt + "\n")
		sb.WriteString("    " + m.inputs[i].View() + "\n")
	}

	if m.editErr != "" {
		sb.WriteString("\n" + errorStyle.Render(m.editErr) + "\n")
	} else if m.entry.Filterable {
		sb.WriteString("\n" + mutedStyle.Render("empty fields are not filtered on") + "\n")
	}
	return sb.String()
}

func (m Model) runningView() string {
	return fmt.Sprintf("\n  %s Running query %d\n  %s\n",
		m.spin.View(), m.entry.ID, mutedStyle.Render(m.entry.Description))
}

func (m Model) resultsView() string {
	return m.statusLine() + "\n" + m.viewport.View()
}

func (m Model) statusLine() string {
	parts := []string{
		fmt.Sprintf("%d rows", m.result.RowCount),
		m.elapsed.Round(time.Millisecond).String(),
	}
	if m.sortIdx >= 0 && m.sortIdx < len(m.entry.Sortable) {
		dir := "asc"
		if m.desc {
			dir = "desc"
		}
		parts = append(parts, fmt.Sprintf("sort: %s %s", m.entry.Sortable[m.sortIdx], dir))
	}
	if m.chartOn {
		parts = append(parts, "chart")
	}

	line := statusStyle.Render(fmt.Sprintf("Query %d", m.entry.ID)) +
		mutedStyle.Render("  "+strings.Join(parts, " | "))
	if m.chartErr != "" {
		line += "  " + errorStyle.Render(m.chartErr)
	}
	return line
}

func (m Model) errorView() string {
	box := errorBoxStyle.Render(
		errorStyle.Render("query failed") + "\n" + wordwrapish(m.runErr.Error(), max(m.width-6, 20)))
	return "\n" + box + "\n"
}

// wordwrapish breaks long error strings on spaces so the box stays inside
// the window. Single words longer than the limit are left alone.
func wordwrapish(s string, limit int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}
	var sb strings.Builder
	lineLen := 0
	for i, w := range words {
		if i > 0 {
			if lineLen+1+len(w) > limit {
				sb.WriteByte('\n')
				lineLen = 0
			} else {
				sb.WriteByte(' ')
				lineLen++
			}
		}
		sb.WriteString(w)
		lineLen += len(w)
	}
	return sb.String()
}

func (m Model) helpView() string {
	var b []key.Binding
	switch m.state {
	case stateBrowsing:
		b = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Select, m.keys.Quit}
	case stateEditing:
		b = []key.Binding{m.keys.Select, m.keys.NextField, m.keys.Back}
	case stateRunning:
		b = []key.Binding{m.keys.Back, m.keys.Quit}
	case stateResults:
		b = []key.Binding{m.keys.Up, m.keys.Down}
		if m.sortable() {
			b = append(b, m.keys.Sort, m.keys.Direction)
		}
		if render.HasChart(m.entry.Analysis) {
			b = append(b, m.keys.Chart)
		}
		if len(m.fields) > 0 {
			b = append(b, m.keys.Edit)
		}
		b = append(b, m.keys.Back, m.keys.Quit)
	case stateError:
		b = []key.Binding{m.keys.Rerun, m.keys.Back, m.keys.Quit}
	}
	return m.help.ShortHelpView(b)
}
