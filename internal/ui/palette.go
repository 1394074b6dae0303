package ui

import "github.com/charmbracelet/lipgloss"

// Semantic colors for status lines. ANSI codes so they follow the
// user's terminal theme.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorWarning lipgloss.Color = "3" // Yellow
	ColorInfo    lipgloss.Color = "6" // Cyan
	ColorMuted   lipgloss.Color = "8" // Gray (bright black)
)

// Status symbols.
const (
	SymbolSuccess = "✓"
	SymbolFail    = "✗"
	SymbolSkipped = "⊘"
	SymbolPending = "○"
)

// spinnerColors cycle while a check is running.
var spinnerColors = []lipgloss.Color{"205", "141", "87", "114"}

// Success renders msg with a green check.
func Success(msg string) string {
	return lipgloss.NewStyle().Foreground(ColorSuccess).Render(SymbolSuccess) + " " + msg
}

// Failure renders msg with a red cross.
func Failure(msg string) string {
	return lipgloss.NewStyle().Foreground(ColorError).Render(SymbolFail) + " " + msg
}

// Muted renders msg in gray.
func Muted(msg string) string {
	return lipgloss.NewStyle().Foreground(ColorMuted).Render(msg)
}
