// Package monitor implements the live dashboard for one Erlang node.
//
// The dashboard is driven by an explicit event loop rather than a Bubble
// Tea program. Each iteration drains pending keyboard and resize events,
// then waits up to the poll timeout for the next sample from the producer.
//
// # Key Components
//
//	Controller  - The event loop and its Running/Paused/Terminating states
//	Window      - Samples inside the retention window, oldest first
//	Selection   - Cursors for the metrics and detail tables
//	Session     - Raw mode, alternate screen and cursor, restored exactly once
//	Input       - Keyboard decoder and signal watcher feeding tea messages
//	Render      - Pure function from a View to a full-screen frame
//
// # Message Flow
//
//  1. The input reader and signal watcher queue tea.KeyMsg and
//     tea.WindowSizeMsg values.
//  2. The controller drains them without blocking and applies them.
//  3. Unless paused, it waits up to the poll timeout for a sample.
//  4. A sample is pushed into the window, cursors are clamped and the
//     frame is redrawn.
//
// While paused no sample is taken from the channel, so the window and the
// selection stay exactly as they were.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	p           - Pause / resume
//	↑/↓         - Move the focused cursor
//	←/→         - Switch focus between the metrics and detail tables
package monitor
