package tui

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	hiFg      = lipgloss.Color("#F59E0B")
	hoverFg   = lipgloss.Color("#FFA500")
	outlineFg = lipgloss.Color("#4B5563")
	borderCol = lipgloss.Color("#243141")

	appStyle   = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)

	plainStyle     = lipgloss.NewStyle()
	outlineStyle   = lipgloss.NewStyle().Foreground(outlineFg)
	highlightStyle = lipgloss.NewStyle().Foreground(hiFg)
	hoverStyle     = lipgloss.NewStyle().Foreground(hoverFg)

	labelStyle   = lipgloss.NewStyle().Foreground(baseDimFg).Width(14)
	valueStyle   = lipgloss.NewStyle().Foreground(baseFg).Bold(true)
	barStyle     = lipgloss.NewStyle().Foreground(hiFg)
	barDimStyle  = lipgloss.NewStyle().Foreground(outlineFg)
	focusStyle   = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	tooltipStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(hoverFg).Padding(0, 1)
)
