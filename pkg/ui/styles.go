// Package ui renders the support console: panels, prompts and status lines.
package ui

import "github.com/charmbracelet/lipgloss"

// ANSI colors used across the console.
const (
	ColorCyan    = lipgloss.Color("14")
	ColorMagenta = lipgloss.Color("13")
	ColorYellow  = lipgloss.Color("11")
	ColorGreen   = lipgloss.Color("10")
	ColorRed     = lipgloss.Color("9")
	ColorGray    = lipgloss.Color("8")
	ColorWhite   = lipgloss.Color("15")
)

const (
	SymbolSuccess = "✓"
	SymbolHandoff = "🤝"
	ruleWidth     = 40
)

type styles struct {
	title     lipgloss.Style
	rule      lipgloss.Style
	bold      lipgloss.Style
	prompt    lipgloss.Style
	assistant lipgloss.Style
	status    lipgloss.Style
	success   lipgloss.Style
	warn      lipgloss.Style
	warnBold  lipgloss.Style
	err       lipgloss.Style
	errBold   lipgloss.Style
	dim       lipgloss.Style
	plain     lipgloss.Style

	welcomePanel lipgloss.Style
	handoffPanel lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:     r.NewStyle().Foreground(ColorCyan).Bold(true),
		rule:      r.NewStyle().Foreground(ColorCyan),
		bold:      r.NewStyle().Bold(true),
		prompt:    r.NewStyle().Foreground(ColorCyan).Bold(true),
		assistant: r.NewStyle().Foreground(ColorMagenta).Bold(true),
		status:    r.NewStyle().Foreground(ColorCyan),
		success:   r.NewStyle().Foreground(ColorGreen).Bold(true),
		warn:      r.NewStyle().Foreground(ColorYellow),
		warnBold:  r.NewStyle().Foreground(ColorYellow).Bold(true),
		err:       r.NewStyle().Foreground(ColorRed),
		errBold:   r.NewStyle().Foreground(ColorRed).Bold(true),
		dim:       r.NewStyle().Foreground(ColorGray),
		plain:     r.NewStyle().Foreground(ColorWhite),

		welcomePanel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorCyan).
			Padding(0, 1),
		handoffPanel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorYellow).
			Padding(1, 2),
	}
}
