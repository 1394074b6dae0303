//go:build !windows

package monitor

import (
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
)

// watchSignals turns SIGWINCH into a resize and SIGTERM/SIGHUP into ctrl+c
// so that signal deaths still run teardown.
func (in *Input) watchSignals() {
	sigs := make(chan os.Signal, 8)
	signal.Notify(sigs, syscall.SIGWINCH, syscall.SIGTERM, syscall.SIGHUP, os.Interrupt)

	go func() {
		defer signal.Stop(sigs)
		for {
			select {
			case <-in.done:
				return
			case sig := <-sigs:
				if sig != syscall.SIGWINCH {
					in.send(tea.KeyMsg{Type: tea.KeyCtrlC})
					continue
				}
				if in.size == nil {
					continue
				}
				if w, h, err := in.size(); err == nil {
					in.send(tea.WindowSizeMsg{Width: w, Height: h})
				}
			}
		}
	}()
}
