package monitor

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"github.com/rileyhilliard/beamtop/internal/errors"
	"github.com/rileyhilliard/beamtop/internal/logger"
	"golang.org/x/term"
)

// Backend is the terminal the session drives. Tests use a fake.
type Backend interface {
	EnterRaw() error
	RestoreMode() error
	EnterAltScreen() error
	ExitAltScreen() error
	HideCursor() error
	ShowCursor() error
	Size() (width, height int, err error)
	Write(frame string) error
}

// TermBackend drives a real terminal with x/term and termenv.
type TermBackend struct {
	in    *os.File
	out   *termenv.Output
	outFd int
	state *term.State
}

// NewTermBackend creates a backend reading mode from in and drawing to out.
func NewTermBackend(in, out *os.File) *TermBackend {
	return &TermBackend{
		in:    in,
		out:   termenv.NewOutput(out),
		outFd: int(out.Fd()),
	}
}

// IsTerminal reports whether both ends are attached to a terminal.
func (b *TermBackend) IsTerminal() bool {
	return term.IsTerminal(int(b.in.Fd())) && term.IsTerminal(b.outFd)
}

func (b *TermBackend) EnterRaw() error {
	state, err := term.MakeRaw(int(b.in.Fd()))
	if err != nil {
		return err
	}
	b.state = state
	return nil
}

func (b *TermBackend) RestoreMode() error {
	if b.state == nil {
		return nil
	}
	return term.Restore(int(b.in.Fd()), b.state)
}

func (b *TermBackend) EnterAltScreen() error {
	b.out.AltScreen()
	return nil
}

func (b *TermBackend) ExitAltScreen() error {
	b.out.ExitAltScreen()
	return nil
}

func (b *TermBackend) HideCursor() error {
	b.out.HideCursor()
	return nil
}

func (b *TermBackend) ShowCursor() error {
	b.out.ShowCursor()
	return nil
}

func (b *TermBackend) Size() (int, int, error) {
	return term.GetSize(b.outFd)
}

// Write draws frame from the top-left corner. Raw mode disables output
// post-processing, so lines are joined with CRLF.
func (b *TermBackend) Write(frame string) error {
	b.out.MoveCursor(1, 1)
	_, err := io.WriteString(b.out, strings.ReplaceAll(frame, "\n", "\r\n"))
	return err
}

// Session owns the terminal from AcquireSession until Release.
type Session struct {
	backend Backend
	log     logger.Logger
	once    sync.Once
}

// AcquireSession enters raw mode and the alternate screen and hides the
// cursor. If a step fails the earlier steps are undone.
func AcquireSession(backend Backend, log logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.Noop()
	}

	if err := backend.EnterRaw(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTerminal,
			"Couldn't switch the terminal to raw mode",
			"Run beamtop in an interactive terminal.")
	}
	if err := backend.EnterAltScreen(); err != nil {
		warnOnErr(log, "restore terminal mode", backend.RestoreMode())
		return nil, errors.WrapWithCode(err, errors.ErrTerminal,
			"Couldn't enter the alternate screen", "")
	}
	if err := backend.HideCursor(); err != nil {
		warnOnErr(log, "leave alternate screen", backend.ExitAltScreen())
		warnOnErr(log, "restore terminal mode", backend.RestoreMode())
		return nil, errors.WrapWithCode(err, errors.ErrTerminal,
			"Couldn't hide the cursor", "")
	}

	log.Debug("terminal session acquired")
	return &Session{backend: backend, log: log}, nil
}

// Release restores the terminal. Only the first call does anything, and
// failures are logged rather than returned.
func (s *Session) Release() {
	s.once.Do(func() {
		warnOnErr(s.log, "leave alternate screen", s.backend.ExitAltScreen())
		warnOnErr(s.log, "show cursor", s.backend.ShowCursor())
		warnOnErr(s.log, "restore terminal mode", s.backend.RestoreMode())
		s.log.Debug("terminal session released")
	})
}

// Draw writes one full frame.
func (s *Session) Draw(frame string) error {
	if err := s.backend.Write(frame); err != nil {
		return errors.WrapWithCode(err, errors.ErrRender,
			"Couldn't draw to the terminal", "")
	}
	return nil
}

// Size returns the terminal size in cells.
func (s *Session) Size() (int, int, error) {
	return s.backend.Size()
}

func warnOnErr(log logger.Logger, what string, err error) {
	if err != nil {
		log.Warn("failed to %s: %v", what, err)
	}
}
