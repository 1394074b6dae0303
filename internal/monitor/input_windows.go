//go:build windows

package monitor

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
)

// watchSignals turns interrupts into ctrl+c. Windows has no SIGWINCH; the
// frame size is refreshed on every redraw instead.
func (in *Input) watchSignals() {
	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigs)
		for {
			select {
			case <-in.done:
				return
			case <-sigs:
				in.send(tea.KeyMsg{Type: tea.KeyCtrlC})
			}
		}
	}()
}
