package monitor

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette
const (
	ColorBorder        = lipgloss.Color("#2A2A4A")
	ColorBorderFocused = lipgloss.Color("#BF40FF")
	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")
	ColorAccent        = lipgloss.Color("#FF2E97")
	ColorWarning       = lipgloss.Color("#FFAA00")
	ColorGraph         = lipgloss.Color("#00FFFF")
	ColorSelectedBg    = lipgloss.Color("#3A2A5A")
)

var (
	borderStyle        = lipgloss.NewStyle().Foreground(ColorBorder)
	borderFocusedStyle = lipgloss.NewStyle().Foreground(ColorBorderFocused)

	titleStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	pausedTitleStyle = lipgloss.NewStyle().
				Foreground(ColorWarning).
				Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// tableStyles returns the bubbles table styling. Only the focused table
// highlights its cursor row.
func tableStyles(focused bool) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorTextSecondary)
	s.Cell = s.Cell.
		Foreground(ColorTextPrimary)
	if focused {
		s.Selected = s.Selected.
			Foreground(ColorTextPrimary).
			Background(ColorSelectedBg).
			Bold(true)
	} else {
		s.Selected = s.Selected.
			Foreground(ColorTextPrimary).
			Bold(true)
	}
	return s
}

// boxTop renders a rounded top border with an embedded title, exactly
// width cells wide.
// Format: ╭─ Title ───────────────╮
func boxTop(title string, style lipgloss.Style, width int, focused bool) string {
	border := borderStyle
	if focused {
		border = borderFocusedStyle
	}
	if width < 2 {
		return border.Render(strings.Repeat("─", max(width, 0)))
	}

	// "╭─ " + title + " " + fill + "╮"
	room := width - 5
	if room < 1 {
		return border.Render("╭" + strings.Repeat("─", width-2) + "╮")
	}
	title = truncate(title, room)
	fill := room - lipgloss.Width(title)
	return border.Render("╭─ ") +
		style.Render(title) +
		border.Render(" "+strings.Repeat("─", fill)+"╮")
}

// boxBottom renders the bottom border.
// Format: ╰──────────────────────╯
func boxBottom(width int, focused bool) string {
	border := borderStyle
	if focused {
		border = borderFocusedStyle
	}
	if width < 2 {
		return border.Render(strings.Repeat("─", max(width, 0)))
	}
	return border.Render("╰" + strings.Repeat("─", width-2) + "╯")
}

// boxLine renders one content line between side borders, clipped or padded
// to fill the inner width.
// Format: │content               │
func boxLine(content string, width int, focused bool) string {
	border := borderStyle
	if focused {
		border = borderFocusedStyle
	}
	inner := width - 2
	if inner < 0 {
		return ""
	}
	content = lipgloss.NewStyle().MaxWidth(inner).Render(content)
	pad := inner - lipgloss.Width(content)
	if pad < 0 {
		pad = 0
	}
	return border.Render("│") + content + strings.Repeat(" ", pad) + border.Render("│")
}

// renderBox draws a titled box of exactly width x height cells. Content
// lines beyond the inner height are dropped.
func renderBox(title string, titleSty lipgloss.Style, content string, width, height int, focused bool) string {
	if height < 2 || width < 2 {
		return ""
	}
	var lines []string
	if content != "" {
		lines = strings.Split(content, "\n")
	}

	out := make([]string, 0, height)
	out = append(out, boxTop(title, titleSty, width, focused))
	for i := 0; i < height-2; i++ {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		out = append(out, boxLine(line, width, focused))
	}
	out = append(out, boxBottom(width, focused))
	return strings.Join(out, "\n")
}
