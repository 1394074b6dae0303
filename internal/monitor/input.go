package monitor

import (
	"io"
	"sync"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/cancelreader"
)

// EventSource yields the input events queued since the last call.
type EventSource interface {
	DrainPending() []tea.Msg
}

// inputQueueSize bounds how many events can wait between iterations.
const inputQueueSize = 256

// Input multiplexes keyboard bytes and terminal signals into tea messages.
type Input struct {
	events  chan tea.Msg
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	size    func() (int, int, error)
	keys    cancelreader.CancelReader
}

// NewInput starts reading keys from r and watching resize and termination
// signals. size reports the terminal size after a resize. Close interrupts
// a pending read when r is a terminal or pipe.
func NewInput(r io.Reader, size func() (int, int, error)) *Input {
	in := &Input{
		events:  make(chan tea.Msg, inputQueueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		size:    size,
	}
	// Files the OS can't poll (/dev/null, regular files) fall back to a
	// plain read; those hit EOF on their own.
	var src io.Reader = r
	if keys, err := cancelreader.NewReader(r); err == nil {
		in.keys = keys
		src = keys
	}
	go in.readKeys(src)
	in.watchSignals()
	return in
}

// DrainPending returns every queued event in arrival order. It never blocks.
func (in *Input) DrainPending() []tea.Msg {
	var msgs []tea.Msg
	for {
		select {
		case msg := <-in.events:
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

// Close stops the signal watcher and the key reader.
func (in *Input) Close() {
	in.once.Do(func() {
		close(in.done)
		if in.keys != nil {
			in.keys.Cancel()
		}
	})
}

func (in *Input) send(msg tea.Msg) bool {
	select {
	case in.events <- msg:
		return true
	case <-in.done:
		return false
	}
}

func (in *Input) readKeys(r io.Reader) {
	defer close(in.stopped)
	if in.keys != nil {
		defer in.keys.Close()
	}
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		for _, key := range decodeKeys(buf[:n]) {
			if !in.send(key) {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// decodeKeys turns raw-mode terminal bytes into key messages. It knows the
// keys the dashboard binds plus the common control keys.
func decodeKeys(b []byte) []tea.KeyMsg {
	var keys []tea.KeyMsg
	for len(b) > 0 {
		switch {
		case b[0] == 0x1b:
			key, n := decodeEscape(b)
			keys = append(keys, key)
			b = b[n:]
			continue
		case b[0] == '\r' || b[0] == '\n':
			keys = append(keys, tea.KeyMsg{Type: tea.KeyEnter})
		case b[0] == '\t':
			keys = append(keys, tea.KeyMsg{Type: tea.KeyTab})
		case b[0] == 0x7f || b[0] == 0x08:
			keys = append(keys, tea.KeyMsg{Type: tea.KeyBackspace})
		case b[0] < 0x20:
			// Control characters share their values with tea's ctrl key types.
			keys = append(keys, tea.KeyMsg{Type: tea.KeyType(b[0])})
		default:
			r, n := utf8.DecodeRune(b)
			keys = append(keys, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
			b = b[n:]
			continue
		}
		b = b[1:]
	}
	return keys
}

var csiKeys = map[byte]tea.KeyType{
	'A': tea.KeyUp,
	'B': tea.KeyDown,
	'C': tea.KeyRight,
	'D': tea.KeyLeft,
	'H': tea.KeyHome,
	'F': tea.KeyEnd,
}

// decodeEscape decodes a sequence starting with ESC and returns the key and
// the number of bytes it used.
func decodeEscape(b []byte) (tea.KeyMsg, int) {
	if len(b) == 1 {
		return tea.KeyMsg{Type: tea.KeyEsc}, 1
	}
	if b[1] != '[' && b[1] != 'O' {
		if b[1] == 0x1b {
			return tea.KeyMsg{Type: tea.KeyEsc}, 1
		}
		r, n := utf8.DecodeRune(b[1:])
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true}, 1 + n
	}

	// CSI / SS3: parameters then one final byte in 0x40..0x7e.
	for i := 2; i < len(b); i++ {
		c := b[i]
		if c >= 0x40 && c <= 0x7e {
			if t, ok := csiKeys[c]; ok {
				return tea.KeyMsg{Type: t}, i + 1
			}
			return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(string(b[:i+1]))}, i + 1
		}
	}
	// Truncated sequence.
	return tea.KeyMsg{Type: tea.KeyEsc}, 1
}
