package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerState is where a spinner is in its life.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerInProgress
	SpinnerSuccess
	SpinnerFailed
	SpinnerSkipped
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// spinnerTick is the animation frame interval.
const spinnerTick = 80 * time.Millisecond

// Spinner shows an animated label on one line while a slow step runs,
// then replaces it with a final status line.
type Spinner struct {
	mu        sync.Mutex
	label     string
	state     SpinnerState
	frame     int
	startTime time.Time
	stop      chan struct{}
	done      chan struct{}
	output    func(string)
	lastWidth int
}

// NewSpinner creates a spinner writing to stdout.
func NewSpinner(label string) *Spinner {
	return &Spinner{
		label:  label,
		output: func(s string) { fmt.Print(s) },
	}
}

// SetOutput redirects the spinner, mostly for tests.
func (s *Spinner) SetOutput(fn func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = fn
}

// Start begins the animation. Calling it twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.state == SpinnerInProgress {
		s.mu.Unlock()
		return
	}
	s.state = SpinnerInProgress
	s.startTime = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.render()
	go s.animate()
}

// Success stops the spinner with a check mark.
func (s *Spinner) Success() { s.finish(SpinnerSuccess) }

// Fail stops the spinner with a cross.
func (s *Spinner) Fail() { s.finish(SpinnerFailed) }

// Skip stops the spinner with a skipped marker.
func (s *Spinner) Skip() { s.finish(SpinnerSkipped) }

// State returns the current state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Label returns the spinner's label.
func (s *Spinner) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

func (s *Spinner) finish(state SpinnerState) {
	s.mu.Lock()
	running := s.state == SpinnerInProgress
	stop, done := s.stop, s.done
	s.mu.Unlock()

	if running {
		close(stop)
		<-done
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.clearLine()

	var symbol string
	var color lipgloss.Color
	switch state {
	case SpinnerSuccess:
		symbol, color = SymbolSuccess, ColorSuccess
	case SpinnerFailed:
		symbol, color = SymbolFail, ColorError
	case SpinnerSkipped:
		symbol, color = SymbolSkipped, ColorWarning
	default:
		symbol, color = SymbolPending, ColorMuted
	}

	timing := ""
	if !s.startTime.IsZero() {
		timing = " " + Muted(formatDuration(time.Since(s.startTime)))
	}
	s.output(fmt.Sprintf("%s %s%s\n", lipgloss.NewStyle().Foreground(color).Render(symbol), s.label, timing))
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.mu.Unlock()
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()

	style := lipgloss.NewStyle().Foreground(spinnerColors[(s.frame/2)%len(spinnerColors)])
	line := fmt.Sprintf("%s %s...", style.Render(spinnerFrames[s.frame]), s.label)

	s.clearLine()
	s.output("\r" + line)
	s.lastWidth = lipgloss.Width(line)
}

// clearLine blanks the last animation frame. Callers hold mu.
func (s *Spinner) clearLine() {
	if s.lastWidth == 0 {
		return
	}
	s.output("\r" + strings.Repeat(" ", s.lastWidth) + "\r")
	s.lastWidth = 0
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
