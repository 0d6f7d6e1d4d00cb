package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"parcelcad/internal/pipeline"
)

// maxHistory bounds the history sidebar.
const maxHistory = 50

type historyItem struct {
	xy   string
	desc string
}

func (h historyItem) Title() string       { return h.xy }
func (h historyItem) Description() string { return h.desc }
func (h historyItem) FilterValue() string { return h.xy }

func describe(r pipeline.Report) string {
	if r.State == pipeline.Error {
		return fmt.Sprintf("failed while %s", r.HaltedAt)
	}
	if r.Drawn() {
		return fmt.Sprintf("drawn  %.5f, %.5f", r.Lat, r.Lon)
	}
	return "partly drawn"
}

// remember puts the submission at the top of the history.
func (m *Model) remember(text string, r pipeline.Report) tea.Cmd {
	xy := r.Input.XY
	if xy == "" {
		xy = text
	}
	items := m.l.Items()
	for i, it := range items {
		if it.(historyItem).xy == xy {
			m.l.RemoveItem(i)
			break
		}
	}
	if n := len(m.l.Items()); n >= maxHistory {
		m.l.RemoveItem(n - 1)
	}
	return m.l.InsertItem(0, historyItem{xy: xy, desc: describe(r)})
}

// recall copies the selected history entry into the input field.
func (m *Model) recall() bool {
	it, ok := m.l.SelectedItem().(historyItem)
	if !ok {
		return false
	}
	m.input.SetValue(it.xy)
	m.input.CursorEnd()
	return true
}
