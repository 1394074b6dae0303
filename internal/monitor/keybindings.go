package monitor

import tea "github.com/charmbracelet/bubbletea"

// State is the controller's lifecycle state.
type State int

const (
	Running State = iota
	Paused
	Terminating
)

// String returns a label for logs.
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Terminating:
		return "terminating"
	default:
		return "unknown"
	}
}

// Key bindings as constants for consistency.
const (
	KeyQuit       = "q"
	KeyQuitAlt    = "ctrl+c"
	KeyPause      = "p"
	KeySelectPrev = "up"
	KeySelectNext = "down"
	KeyFocusLeft  = "left"
	KeyFocusRight = "right"
)

// handleKey applies one key press. It returns true when the frame should
// be redrawn.
func (c *Controller) handleKey(msg tea.KeyMsg) bool {
	latest := c.history.Latest()

	switch msg.String() {
	case KeyQuit, KeyQuitAlt:
		c.setState(Terminating)
		return false

	case KeyPause:
		if c.state == Paused {
			c.setState(Running)
		} else {
			c.setState(Paused)
		}
		return true

	case KeySelectPrev:
		c.selection.MoveUp(latest)
		return true

	case KeySelectNext:
		c.selection.MoveDown(latest)
		return true

	case KeyFocusLeft:
		c.selection.FocusLeft()
		return true

	case KeyFocusRight:
		c.selection.FocusRight()
		return true
	}

	return false
}
