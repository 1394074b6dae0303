package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// helpHeight is the fixed height of the help box, borders included.
const helpHeight = 5

// HelpBinding represents a single keyboard shortcut entry.
type HelpBinding struct {
	Key  string
	Desc string
}

// helpBindings defines the shortcuts listed in the help box.
var helpBindings = []HelpBinding{
	{Key: "Quit:", Desc: "'q' key"},
	{Key: "Pause / Resume:", Desc: "'p' key"},
	{Key: "Move:", Desc: "UP / DOWN / LEFT / RIGHT keys"},
}

var (
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Width(16)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)
)

func renderHelp(width int) string {
	lines := make([]string, 0, len(helpBindings))
	for _, binding := range helpBindings {
		lines = append(lines, helpKeyStyle.Render(binding.Key)+helpDescStyle.Render(binding.Desc))
	}
	return renderBox("Help", titleStyle, strings.Join(lines, "\n"), width, helpHeight, false)
}
