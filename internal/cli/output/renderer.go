// Package output renders command chrome: styled text for terminals, plain
// text for pipes, and JSON or markdown when asked for explicitly.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// OutputMode selects how commands present their non-result output.
type OutputMode string

const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeJSON     OutputMode = "json"
	ModeMarkdown OutputMode = "markdown"
)

// Mode normalizes a user-supplied mode name.
func Mode(s string) OutputMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto
	case "json":
		return ModeJSON
	case "md", "markdown":
		return ModeMarkdown
	default:
		return ModeText
	}
}

// Styles are the text styles commands compose their output from.
type Styles struct {
	Header1       lipgloss.Style
	Header2       lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Success       lipgloss.Style
	Warning       lipgloss.Style
	Error         lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// DefaultStyles returns the styled palette.
func DefaultStyles() Styles {
	return Styles{
		Header1:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:          lipgloss.NewStyle().Bold(true),
		Muted:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:       lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		StatusSuccess: lipgloss.NewStyle().SetString("✓").Foreground(lipgloss.Color("10")),
		StatusFailed:  lipgloss.NewStyle().SetString("✗").Foreground(lipgloss.Color("9")),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{
		Header1: s, Header2: s, Bold: s, Muted: s, Success: s, Warning: s, Error: s,
		StatusSuccess: lipgloss.NewStyle().SetString("✓"),
		StatusFailed:  lipgloss.NewStyle().SetString("✗"),
	}
}

// Renderer writes command output to a stdout/stderr pair.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	mode   OutputMode
	isTTY  bool
}

// NewRenderer creates a renderer for the given streams and mode, detecting
// whether stdout is a terminal.
func NewRenderer(stdout, stderr io.Writer, mode OutputMode) *Renderer {
	return NewRendererWithTTY(stdout, stderr, isTerminal(stdout), mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state. Tests use
// this to exercise both styled and plain output deterministically.
func NewRendererWithTTY(stdout, stderr io.Writer, isTTY bool, mode OutputMode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{stdout: stdout, stderr: stderr, mode: mode, isTTY: isTTY}
}

// EffectiveMode resolves ModeAuto to the concrete mode in effect: text on a
// terminal, markdown when output is piped.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether stdout is treated as a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Styles returns the styled palette on a color terminal and plain styles
// otherwise. NO_COLOR and CLICOLOR are honored.
func (r *Renderer) Styles() Styles {
	if r.styled() {
		return DefaultStyles()
	}
	return PlainStyles()
}

func (r *Renderer) styled() bool {
	return r.isTTY && !termenv.EnvNoColor()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Writer returns the stdout writer for callers that stream output directly.
func (r *Renderer) Writer() io.Writer {
	return r.stdout
}

// Println writes a line to stdout.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.stdout, s)
}

// Header writes a styled section header to stdout. Level 1 is the page
// title, anything deeper a section heading.
func (r *Renderer) Header(level int, text string) {
	styles := r.Styles()
	if level <= 1 {
		r.Println(styles.Header1.Render(text))
		return
	}
	r.Println(styles.Header2.Render(text))
}

// QueryLine writes one catalog entry line for list output.
func (r *Renderer) QueryLine(id int, description string, badges []string) {
	line := fmt.Sprintf("%3d  %s", id, description)
	if len(badges) > 0 {
		line += "  " + r.Styles().Muted.Render("["+strings.Join(badges, ", ")+"]")
	}
	r.Println(line)
}

// Printf writes formatted text to stdout.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.stdout, format, args...)
}

// Warning writes a warning line to stderr.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.stderr, r.Styles().Warning.Render("warning: ")+msg)
}

// Success writes a checked line to stdout.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.stdout, r.Styles().Success.Render("✓")+" "+msg)
}

// JSON writes v to stdout as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatHeader renders a markdown heading of the given level. Renderers in
// markdown mode use these package-level helpers; styled text output goes
// through Header on the renderer instead.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue renders a markdown "**Key:** value" line.
func FormatKeyValue(key, value string) string {
	return "**" + key + ":** " + value
}
