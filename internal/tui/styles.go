package tui

import (
	"github.com/charmbracelet/lipgloss"

	"parcelcad/internal/pipeline"
)

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	borderCol = lipgloss.Color("#243141")
	infoFg    = lipgloss.Color("#22C55E")
	warnFg    = lipgloss.Color("#F59E0B")
	errorFg   = lipgloss.Color("#EF4444")

	appStyle   = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)
)

func levelColor(l pipeline.Level) lipgloss.TerminalColor {
	switch l {
	case pipeline.LevelWarning:
		return warnFg
	case pipeline.LevelError:
		return errorFg
	}
	return infoFg
}

func noticeStyle(l pipeline.Level) lipgloss.Style {
	return boxStyle.BorderForeground(levelColor(l))
}
