package ui

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type capture struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (c *capture) write(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.WriteString(s)
}

func (c *capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Checking")
	assert.Equal(t, "Checking", s.Label())
	assert.Equal(t, SpinnerPending, s.State())
}

func TestSpinner_FinalStates(t *testing.T) {
	tests := []struct {
		name   string
		finish func(*Spinner)
		state  SpinnerState
		symbol string
	}{
		{"success", (*Spinner).Success, SpinnerSuccess, SymbolSuccess},
		{"fail", (*Spinner).Fail, SpinnerFailed, SymbolFail},
		{"skip", (*Spinner).Skip, SpinnerSkipped, SymbolSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out capture
			s := NewSpinner("Reaching app@db1")
			s.SetOutput(out.write)

			s.Start()
			assert.Equal(t, SpinnerInProgress, s.State())
			time.Sleep(2 * spinnerTick)
			tt.finish(s)

			assert.Equal(t, tt.state, s.State())
			got := out.String()
			assert.Contains(t, got, tt.symbol)
			assert.Contains(t, got, "Reaching app@db1")
			assert.True(t, strings.HasSuffix(got, "\n"))
		})
	}
}

func TestSpinner_StartTwiceAndFinishWithoutStart(t *testing.T) {
	var out capture
	s := NewSpinner("x")
	s.SetOutput(out.write)

	assert.NotPanics(t, func() {
		s.Skip()
		s.Start()
		s.Start()
		s.Success()
	})
	assert.Equal(t, SpinnerSuccess, s.State())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0.05s", formatDuration(50*time.Millisecond))
	assert.Equal(t, "1.2s", formatDuration(1200*time.Millisecond))
}

func TestStatusLines(t *testing.T) {
	assert.Contains(t, Success("saved"), "saved")
	assert.Contains(t, Success("saved"), SymbolSuccess)
	assert.Contains(t, Failure("nope"), SymbolFail)
	assert.Contains(t, Muted("quiet"), "quiet")
}
