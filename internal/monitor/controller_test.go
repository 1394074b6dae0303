package monitor

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/beamtop/internal/erlang"
	"github.com/rileyhilliard/beamtop/internal/errors"
	"github.com/rileyhilliard/beamtop/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	input  *scriptedInput
	stream *fakeStream
	screen *fakeScreen
	sleeps int
	ctrl   *Controller
}

func newHarness(batches [][]tea.Msg, samples ...erlang.Sample) *harness {
	h := &harness{
		input:  &scriptedInput{batches: batches},
		stream: newFakeStream(samples...),
		screen: &fakeScreen{},
	}
	h.ctrl = NewController(Options{
		Input:     h.input,
		Stream:    h.stream,
		Screen:    h.screen,
		Version:   erlang.NewSystemVersion("Erlang/OTP 26"),
		Node:      "app@box",
		Poll:      time.Millisecond,
		Retention: time.Minute,
		Logger:    logger.NewBufferLogger(),
		Sleep:     func(time.Duration) { h.sleeps++ },
	})
	return h
}

func (h *harness) run(t *testing.T) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- h.ctrl.Run(context.Background()) }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("controller did not stop")
		return nil
	}
}

func batch(msgs ...tea.Msg) []tea.Msg { return msgs }

func TestController_QuitKeys(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		t.Run(k, func(t *testing.T) {
			h := newHarness([][]tea.Msg{batch(key(k))})

			require.NoError(t, h.run(t))

			assert.Equal(t, Terminating, h.ctrl.State())
			assert.Empty(t, h.screen.frames)
		})
	}
}

func TestController_SampleIsPushedAndDrawn(t *testing.T) {
	h := newHarness([][]tea.Msg{nil, batch(key("q"))}, sampleWith(0, "memory", "process_count"))

	require.NoError(t, h.run(t))

	assert.Equal(t, 1, h.ctrl.History().Len())
	assert.Equal(t, 0, h.ctrl.Selection().Metrics)
	require.Len(t, h.screen.frames, 1)
	assert.Contains(t, h.screen.frames[0], "Erlang/OTP 26")
	assert.Contains(t, h.screen.frames[0], "process_count")
}

func TestController_QuitWhilePaused(t *testing.T) {
	h := newHarness([][]tea.Msg{batch(key("p")), nil, nil, batch(key("q"))},
		sampleWith(0, "a"), sampleWith(1, "a"), sampleWith(2, "a"))

	require.NoError(t, h.run(t))

	assert.Equal(t, Terminating, h.ctrl.State())
	assert.Equal(t, 3, h.sleeps)
	assert.True(t, h.ctrl.History().IsEmpty(), "no sample consumed while paused")
	assert.Len(t, h.stream.ch, 3)
	assert.Empty(t, h.screen.frames, "pause with empty history doesn't draw")
}

func TestController_PauseFreezesHistoryAndSelection(t *testing.T) {
	h := newHarness([][]tea.Msg{nil, batch(key("p")), batch(key("down")), nil, batch(key("q"))},
		sampleWith(0, "a", "b"), sampleWith(1, "a"))

	require.NoError(t, h.run(t))

	assert.Equal(t, 1, h.ctrl.History().Len())
	assert.Len(t, h.stream.ch, 1, "second sample stays queued")
	assert.Equal(t, 1, h.ctrl.Selection().Metrics, "cursor still moves against the frozen sample")
	require.Len(t, h.screen.frames, 3)
	assert.Contains(t, h.screen.frames[1], "Metrics (PAUSED)")
	assert.Equal(t, 3, h.sleeps)
}

func TestController_ResumeConsumesAgain(t *testing.T) {
	h := newHarness([][]tea.Msg{batch(key("p")), batch(key("p")), batch(key("q"))},
		sampleWith(0, "a"))

	require.NoError(t, h.run(t))

	assert.Equal(t, 1, h.ctrl.History().Len())
	assert.Equal(t, 1, h.sleeps)
	require.NotEmpty(t, h.screen.frames)
	assert.NotContains(t, h.screen.frames[len(h.screen.frames)-1], "(PAUSED)")
}

func TestController_DisconnectIsFatal(t *testing.T) {
	h := newHarness(nil, sampleWith(0, "a"))
	h.stream.err = assert.AnError
	close(h.stream.ch)

	err := h.run(t)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNode))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "app@box")
	assert.Equal(t, 1, h.ctrl.History().Len(), "buffered samples are consumed before the close")
}

func TestController_DrawErrorIsFatal(t *testing.T) {
	h := newHarness(nil, sampleWith(0, "a"))
	h.screen.drawErr = errors.New(errors.ErrRender, "broken pipe", "")

	err := h.run(t)

	assert.True(t, errors.IsCode(err, errors.ErrRender))
}

func TestController_InputRedrawNeedsHistory(t *testing.T) {
	h := newHarness([][]tea.Msg{
		batch(key("down"), key("p"), key("p"), tea.WindowSizeMsg{Width: 120, Height: 40}),
		batch(key("q")),
	})

	require.NoError(t, h.run(t))

	assert.Empty(t, h.screen.frames)
}

func TestController_UnknownKeyDoesNotRedraw(t *testing.T) {
	h := newHarness([][]tea.Msg{nil, batch(key("x"), key("esc")), batch(key("q"))}, sampleWith(0, "a"))

	require.NoError(t, h.run(t))

	assert.Len(t, h.screen.frames, 1, "only the sample draw")
}

func TestController_ArrowsMoveAndRedrawOncePerBatch(t *testing.T) {
	h := newHarness([][]tea.Msg{nil, batch(key("down"), key("down")), batch(key("right")), batch(key("q"))},
		sampleWith(0, "a", "b", "c"))

	require.NoError(t, h.run(t))

	sel := h.ctrl.Selection()
	assert.Equal(t, 2, sel.Metrics)
	assert.Equal(t, FocusDetail, sel.Focus)
	assert.Len(t, h.screen.frames, 3)
}

func TestController_ResizeRedraws(t *testing.T) {
	h := newHarness([][]tea.Msg{nil, batch(tea.WindowSizeMsg{Width: 90, Height: 25}), batch(key("q"))},
		sampleWith(0, "a"))

	require.NoError(t, h.run(t))

	assert.Len(t, h.screen.frames, 2)
}

func TestController_ClampAfterShrinkingSample(t *testing.T) {
	h := newHarness(nil, sampleWith(0, "a", "b", "c", "d", "e"))
	h.input.batches = [][]tea.Msg{
		nil,
		batch(key("down"), key("down"), key("down"), key("down")),
		nil,
		batch(key("q")),
	}
	h.input.onDrain = func(call int) {
		if call == 1 {
			h.stream.ch <- sampleWith(1, "a", "b")
		}
	}

	require.NoError(t, h.run(t))

	assert.Equal(t, 1, h.ctrl.Selection().Metrics)
	assert.Equal(t, 2, h.ctrl.History().Len())
}

func TestController_HistoryStaysBounded(t *testing.T) {
	var samples []erlang.Sample
	for _, s := range []int{0, 10, 20, 70} {
		samples = append(samples, sampleWith(s, "a"))
	}
	h := newHarness([][]tea.Msg{nil, nil, nil, nil, batch(key("q"))}, samples...)

	require.NoError(t, h.run(t))

	w := h.ctrl.History()
	require.Equal(t, 3, w.Len())
	assert.Equal(t, epoch.Add(10*time.Second), w.Oldest().Timestamp)
}

func TestController_ContextCancel(t *testing.T) {
	h := newHarness(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.ctrl.Run(ctx)

	assert.True(t, stderrors.Is(err, context.Canceled))
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state  State
		expect string
	}{
		{Running, "running"},
		{Paused, "paused"},
		{Terminating, "terminating"},
		{State(9), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expect, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.state.String())
		})
	}
}

func TestDisconnectSuggestion(t *testing.T) {
	exited := func(code int) error {
		return errors.WrapWithCode(errors.NewExitError(code), errors.ErrExec, "erl exited", "")
	}
	tests := []struct {
		name  string
		cause error
		want  string
	}{
		{"cannot connect", exited(2), "couldn't connect"},
		{"rpc failure", exited(3), "stopped answering"},
		{"erl missing", exited(127), "--erl"},
		{"other exit", exited(1), "still up"},
		{"no exit code", erlang.ErrProbeExited, "still up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, disconnectSuggestion(tt.cause), tt.want)
		})
	}
}

func TestController_DisconnectCarriesExitSuggestion(t *testing.T) {
	h := newHarness(nil)
	h.stream.err = errors.WrapWithCode(errors.NewExitError(2), errors.ErrExec, "erl exited with code 2", "")
	close(h.stream.ch)

	err := h.run(t)

	var structured *errors.Error
	require.True(t, stderrors.As(err, &structured))
	assert.Equal(t, errors.ErrNode, structured.Code)
	assert.Contains(t, structured.Suggestion, "couldn't connect")
}
