package monitor

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/beamtop/internal/erlang"
)

// fakeBackend records terminal calls. failOn makes the named call fail.
type fakeBackend struct {
	mu     sync.Mutex
	calls  []string
	frames []string
	failOn map[string]error
	width  int
	height int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{failOn: map[string]error{}, width: 100, height: 30}
}

func (b *fakeBackend) record(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, name)
	return b.failOn[name]
}

func (b *fakeBackend) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (b *fakeBackend) EnterRaw() error       { return b.record("raw") }
func (b *fakeBackend) RestoreMode() error    { return b.record("restore") }
func (b *fakeBackend) EnterAltScreen() error { return b.record("alt") }
func (b *fakeBackend) ExitAltScreen() error  { return b.record("exit-alt") }
func (b *fakeBackend) HideCursor() error     { return b.record("hide") }
func (b *fakeBackend) ShowCursor() error     { return b.record("show") }

func (b *fakeBackend) Size() (int, int, error) {
	return b.width, b.height, nil
}

func (b *fakeBackend) Write(frame string) error {
	if err := b.record("write"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = append(b.frames, frame)
	return nil
}

// scriptedInput hands out one batch per DrainPending call, then nothing.
// onDrain runs before each call so tests can act between iterations.
type scriptedInput struct {
	batches [][]tea.Msg
	calls   int
	onDrain func(call int)
}

func (s *scriptedInput) DrainPending() []tea.Msg {
	call := s.calls
	s.calls++
	if s.onDrain != nil {
		s.onDrain(call)
	}
	if call < len(s.batches) {
		return s.batches[call]
	}
	return nil
}

// fakeStream is a buffered sample channel with a settable error.
type fakeStream struct {
	ch  chan erlang.Sample
	err error
}

func newFakeStream(samples ...erlang.Sample) *fakeStream {
	s := &fakeStream{ch: make(chan erlang.Sample, 64)}
	for _, sample := range samples {
		s.ch <- sample
	}
	return s
}

func (s *fakeStream) Samples() <-chan erlang.Sample { return s.ch }
func (s *fakeStream) Err() error                    { return s.err }

// fakeScreen records frames and can fail draws.
type fakeScreen struct {
	frames  []string
	drawErr error
}

func (s *fakeScreen) Draw(frame string) error {
	if s.drawErr != nil {
		return s.drawErr
	}
	s.frames = append(s.frames, frame)
	return nil
}

func (s *fakeScreen) Size() (int, int, error) { return 100, 30, nil }

func key(k string) tea.Msg {
	switch k {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func sampleWith(offsetSec int, names ...string) erlang.Sample {
	s := erlang.Sample{Timestamp: epoch.Add(time.Duration(offsetSec) * time.Second)}
	for i, n := range names {
		s.Metrics = append(s.Metrics, erlang.Metric{Name: n, Value: float64(i + 1)})
	}
	return s
}
