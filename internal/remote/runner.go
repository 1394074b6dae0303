// Package remote runs the metrics probe either on this machine or on the
// node's host over SSH. Both runners stream the probe's stdout as it is
// produced and keep the tail of stderr for error reports.
package remote

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
)

// Runner starts a long-lived command and streams its stdout.
type Runner interface {
	// Run executes argv, copying stdout to the writer until the command
	// exits or ctx is cancelled. It returns ctx.Err() after cancellation.
	Run(ctx context.Context, argv []string, stdout io.Writer) error

	// Describe names where commands run, for logs and errors.
	Describe() string

	// Close releases any connection held by the runner.
	Close() error
}

// stderrTailBytes caps how much stderr is kept for error messages.
const stderrTailBytes = 4096

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf bytes.Buffer
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(p)
	if len(p) > t.max {
		p = p[len(p)-t.max:]
	}
	if over := t.buf.Len() + len(p) - t.max; over > 0 {
		t.buf.Next(over)
	}
	t.buf.Write(p)
	return n, nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(t.buf.String())
}

// ShellQuote joins argv into one POSIX shell command line.
func ShellQuote(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = quoteArg(arg)
	}
	return strings.Join(quoted, " ")
}

func quoteArg(arg string) string {
	if arg == "" {
		return "''"
	}
	safe := true
	for _, r := range arg {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./@:=+,%", r)) {
			safe = false
			break
		}
	}
	if safe {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
