package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"parcelcad/internal/pipeline"
)

const sidebarWidth = 28

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, m.width-len(m.input.Prompt)-4)
		m.l.SetSize(sidebarWidth-2, max(4, m.height-6))
		return m, nil
	case StateMsg:
		m.state = msg.To
		if m.busy {
			m.status = msg.To.String() + "…"
		}
		return m, nil
	case ReportMsg:
		return m.finish(msg.Report)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	var cmd tea.Cmd
	if m.input.Focused() {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	// a pending notice is modal
	if len(m.notices) > 0 {
		switch key {
		case "enter", "esc", " ":
			m.notices = m.notices[1:]
		}
		return m, nil
	}
	if m.input.Focused() {
		switch key {
		case "enter":
			return m.submit()
		case "esc", "tab":
			m.input.Blur()
			m.status = "view mode"
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	if m.showSidebar {
		switch key {
		case "up", "down", "k", "j", "pgup", "pgdown":
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		case "enter":
			if m.recall() {
				m.showSidebar = false
				m.status = "recalled " + m.input.Value()
				return m, m.input.Focus()
			}
			return m, nil
		}
	}
	switch key {
	case "q":
		return m, tea.Quit
	case "i", "/", "enter":
		m.status = "edit mode"
		return m, m.input.Focus()
	case "tab":
		m.showSidebar = !m.showSidebar
	case "h":
		m.helpVisible = !m.helpVisible
	case "a":
		m.showAttrs = !m.showAttrs
		if m.showAttrs {
			m.refreshAttrs()
		}
	case "+", "=":
		if m.vp.Zoom < 64 {
			m.vp.Zoom *= 1.2
			m.status = fmt.Sprintf("zoom: %.2fx", m.vp.Zoom)
		}
	case "-", "_":
		if m.vp.Zoom > 0.05 {
			m.vp.Zoom /= 1.2
			m.status = fmt.Sprintf("zoom: %.2fx", m.vp.Zoom)
		}
	case "0":
		m.vp.Zoom, m.vp.OffsetX, m.vp.OffsetY = 1, 0, 0
		m.status = "view reset"
	case "up":
		m.vp.OffsetY -= 1
	case "down":
		m.vp.OffsetY += 1
	case "left":
		m.vp.OffsetX -= 2
	case "right":
		m.vp.OffsetX += 2
	}
	return m, nil
}

// submit starts the pipeline for the field value on a worker goroutine.
// Submissions are ignored while one is running.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy || m.submitter == nil {
		return m, nil
	}
	text := m.input.Value()
	m.busy = true
	m.pending = text
	m.state = pipeline.ParsingInput
	m.status = "submitting " + text
	if m.canvas != nil {
		m.canvas.Reset()
	}
	ctx, s := m.ctx, m.submitter
	return m, func() tea.Msg {
		return ReportMsg{Report: s.Submit(ctx, text)}
	}
}

func (m Model) finish(r pipeline.Report) (tea.Model, tea.Cmd) {
	m.busy = false
	m.state = r.State
	m.last = &r
	m.notices = append(m.notices, r.Notices...)
	if r.State == pipeline.Error {
		m.status = "failed: " + r.Err.Error()
	} else {
		m.status = fmt.Sprintf("done  lat=%.6f lon=%.6f", r.Lat, r.Lon)
	}
	m.vp.Zoom, m.vp.OffsetX, m.vp.OffsetY = 1, 0, 0
	if m.showAttrs {
		m.refreshAttrs()
	}
	return m, m.remember(m.pending, r)
}
