package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	// Layout sizes
	headerHeight := 1
	inputHeight := 3
	footerHeight := 2
	contentHeight := max(4, m.height-headerHeight-inputHeight-footerHeight)
	contentWidth := max(20, m.width)

	header := titleStyle.Render(" parcelcad ─ ULDK parcel lookup ")
	header = lipgloss.NewStyle().Width(contentWidth).Render(header)

	state := dimStyle.Render(m.state.String())
	if m.busy {
		state = lipgloss.NewStyle().Foreground(warnFg).Render(m.state.String() + "…")
	}
	inputW := contentWidth - lipgloss.Width(state) - 5
	inputRow := boxStyle.Width(contentWidth - 2).Render(
		lipgloss.JoinHorizontal(lipgloss.Center,
			lipgloss.NewStyle().Width(inputW).Render(m.input.View()),
			" ", state))

	body := m.renderBody(contentWidth, contentHeight)

	help := m.renderHelp()
	status := dimStyle.Render(" " + truncate(m.status, contentWidth/2) + " ")
	footer := lipgloss.NewStyle().Width(contentWidth).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, status, help))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, inputRow, body, footer)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

func (m Model) renderBody(w, h int) string {
	if len(m.notices) > 0 {
		return m.renderNotice(w, h)
	}
	mainW := w
	var sidebar string
	if m.showSidebar {
		sidebar = lipgloss.NewStyle().Width(sidebarWidth).Height(h).Render(m.l.View())
		mainW = max(10, w-sidebarWidth-1)
	}

	var main string
	switch {
	case m.showAttrs:
		m.tbl.SetWidth(min(mainW-4, 80))
		m.tbl.SetHeight(min(h-2, 8))
		box := boxStyle.Render(m.tbl.View())
		main = lipgloss.Place(mainW, h, lipgloss.Center, lipgloss.Center, box)
	case m.canvas != nil:
		main = lipgloss.NewStyle().Width(mainW).Height(h).Render(m.canvas.Render(mainW, h, m.vp))
	default:
		main = lipgloss.Place(mainW, h, lipgloss.Center, lipgloss.Center,
			dimStyle.Render("boundaries are drawn in the CAD host"))
	}
	if m.showSidebar {
		return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main)
	}
	return main
}

// renderNotice draws the first pending notice as a centred dialog.
func (m Model) renderNotice(w, h int) string {
	n := m.notices[0]
	boxW := min(64, max(24, w-4))
	title := lipgloss.NewStyle().Foreground(levelColor(n.Level)).Bold(true).Render(n.Title)
	text := lipgloss.NewStyle().Width(boxW - 4).Render(n.Text)
	more := ""
	if len(m.notices) > 1 {
		more = dimStyle.Render(fmt.Sprintf("  (%d more)", len(m.notices)-1))
	}
	hint := dimStyle.Render("Enter/Esc to dismiss") + more
	box := noticeStyle(n.Level).Width(boxW).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", text, "", hint))
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	var keys []string
	if m.input.Focused() {
		keys = []string{"Enter submit", "Esc view mode", "ctrl+c quit"}
	} else {
		keys = []string{
			"i edit",
			"↑↓←→ pan",
			"+/- zoom",
			"0 reset",
			"Tab history",
			"a attrs",
			"h help",
			"q quit",
		}
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
