package monitor

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/beamtop/internal/erlang"
	"github.com/rileyhilliard/beamtop/internal/errors"
	"github.com/rileyhilliard/beamtop/internal/logger"
)

// DefaultPoll is how long one iteration waits for a sample.
const DefaultPoll = 10 * time.Millisecond

// SampleStream is the producer side: a channel closed when the producer
// stops, and the reason it stopped.
type SampleStream interface {
	Samples() <-chan erlang.Sample
	Err() error
}

// Screen is where frames go. *Session implements it.
type Screen interface {
	Draw(frame string) error
	Size() (width, height int, err error)
}

// Options configures a Controller.
type Options struct {
	Input EventSource
	// Keys is read for input once the terminal is in raw mode. Run uses it
	// when Input is nil.
	Keys      io.Reader
	Stream    SampleStream
	Screen    Screen
	Version   *erlang.SystemVersion
	Node      string
	Poll      time.Duration
	Retention time.Duration
	Logger    logger.Logger
	// Sleep is used while paused. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Controller runs the dashboard event loop. Everything it owns is touched
// only from the goroutine that calls Run.
type Controller struct {
	input   EventSource
	stream  SampleStream
	screen  Screen
	version *erlang.SystemVersion
	node    string
	poll    time.Duration
	log     logger.Logger
	sleep   func(time.Duration)

	history   *Window
	selection Selection
	state     State
	width     int
	height    int
}

// NewController creates a controller in the Running state with an empty
// history.
func NewController(opts Options) *Controller {
	if opts.Poll <= 0 {
		opts.Poll = DefaultPoll
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Version == nil {
		opts.Version = erlang.NewSystemVersion("")
	}
	return &Controller{
		input:     opts.Input,
		stream:    opts.Stream,
		screen:    opts.Screen,
		version:   opts.Version,
		node:      opts.Node,
		poll:      opts.Poll,
		log:       opts.Logger,
		sleep:     opts.Sleep,
		history:   NewWindow(opts.Retention),
		selection: NewSelection(),
		state:     Running,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// History returns the sample window.
func (c *Controller) History() *Window {
	return c.history
}

// Selection returns the current cursors.
func (c *Controller) Selection() Selection {
	return c.selection
}

// Run loops until the user quits, ctx is cancelled, the producer goes away
// or a frame can't be drawn. A clean quit returns nil.
func (c *Controller) Run(ctx context.Context) error {
	if w, h, err := c.screen.Size(); err == nil {
		c.width, c.height = w, h
	}

	timer := time.NewTimer(c.poll)
	defer timer.Stop()

	for {
		if err := c.handleInput(); err != nil {
			return err
		}
		if c.state == Terminating {
			c.log.Debug("quit requested")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if c.state == Paused {
			c.sleep(c.poll)
			continue
		}

		if err := c.waitForSample(ctx, timer); err != nil {
			return err
		}
	}
}

// handleInput applies every pending event. Input redraws happen only once
// there is something to show.
func (c *Controller) handleInput() error {
	redraw := false
	for _, msg := range c.input.DrainPending() {
		switch msg := msg.(type) {
		case tea.KeyMsg:
			if c.handleKey(msg) {
				redraw = true
			}
		case tea.WindowSizeMsg:
			c.width, c.height = msg.Width, msg.Height
			redraw = true
		}
		if c.state == Terminating {
			return nil
		}
	}
	if redraw && !c.history.IsEmpty() {
		return c.draw()
	}
	return nil
}

func (c *Controller) waitForSample(ctx context.Context, timer *time.Timer) error {
	resetTimer(timer, c.poll)

	select {
	case sample, ok := <-c.stream.Samples():
		if !ok {
			return c.disconnected()
		}
		c.history.Push(sample)
		c.selection.Clamp(c.history.Latest())
		return c.draw()
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) disconnected() error {
	cause := c.stream.Err()
	c.log.Error("sample stream closed: %v", cause)
	return errors.WrapWithCode(cause, errors.ErrNode,
		"Lost the connection to "+c.nodeLabel(),
		disconnectSuggestion(cause))
}

// disconnectSuggestion reads the probe's exit status, when there is one.
// The probe halts with 2 when it can't connect and 3 when an RPC fails.
func disconnectSuggestion(cause error) string {
	code, _ := errors.GetExitCode(cause)
	switch code {
	case 2:
		return "The probe couldn't connect. Check the node name and cookie, and that the node is running."
	case 3:
		return "The node stopped answering RPC calls. It may be overloaded or shutting down."
	case 127:
		return "erl wasn't found where the probe runs. Set --erl to its full path."
	}
	return "Check the node is still up and the cookie is right, then run beamtop again."
}

func (c *Controller) nodeLabel() string {
	if c.node == "" {
		return "the node"
	}
	return c.node
}

func (c *Controller) draw() error {
	if w, h, err := c.screen.Size(); err == nil && w > 0 && h > 0 {
		c.width, c.height = w, h
	}
	return c.screen.Draw(Render(c.view()))
}

func (c *Controller) view() View {
	return View{
		Version:   c.version.Get(),
		Paused:    c.state == Paused,
		History:   c.history,
		Selection: c.selection,
		Width:     c.width,
		Height:    c.height,
	}
}

func (c *Controller) setState(s State) {
	if c.state != s {
		c.log.Debug("state %s -> %s", c.state, s)
		c.state = s
	}
}

// resetTimer rearms t, draining a fire that nobody received.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
