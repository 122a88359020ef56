package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// spinnerFrames are the braille frames shared with the interactive view.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows progress on stderr while a slow step runs. On non-terminal
// output it degrades to a single plain line per outcome.
type Spinner struct {
	w       io.Writer
	msg     string
	enabled bool

	mu   sync.Mutex
	done chan struct{}
}

// NewSpinner creates a spinner bound to the renderer's stderr. It animates
// only when the renderer is styled.
func (r *Renderer) NewSpinner(msg string) *Spinner {
	return &Spinner{w: r.stderr, msg: msg, enabled: r.styled()}
}

// Start begins the animation. Calling Start on a disabled spinner is a no-op.
func (s *Spinner) Start() {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_, _ = fmt.Fprintf(s.w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], s.msg)
				i++
			}
		}
	}(s.done)
}

func (s *Spinner) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		close(s.done)
		s.done = nil
		_, _ = fmt.Fprint(s.w, "\r\033[K")
	}
}

// Success stops the spinner and prints a checked line.
func (s *Spinner) Success(msg string) {
	s.stop()
	_, _ = fmt.Fprintln(s.w, DefaultStyles().Success.Render("✓")+" "+msg)
}

// Fail stops the spinner and prints a crossed line.
func (s *Spinner) Fail(msg string) {
	s.stop()
	_, _ = fmt.Fprintln(s.w, DefaultStyles().Error.Render("✗")+" "+msg)
}
