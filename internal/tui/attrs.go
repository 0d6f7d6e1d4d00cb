package tui

import (
	"sort"

	table "github.com/charmbracelet/bubbles/table"

	"parcelcad/internal/pipeline"
)

// refreshAttrs rebuilds the attributes table from the last report: one row
// per entity with its status and every extra registry field.
func (m *Model) refreshAttrs() {
	if m.last == nil || len(m.last.Lookups) == 0 {
		m.showAttrs = false
		m.status = "no lookup attributes"
		return
	}
	seen := map[string]bool{}
	var fields []string
	for _, res := range m.last.Lookups {
		for k := range res.Attributes {
			if !seen[k] {
				seen[k] = true
				fields = append(fields, k)
			}
		}
	}
	sort.Strings(fields)

	cols := []table.Column{{Title: "entity", Width: 8}, {Title: "status", Width: 6}}
	maxColW := 24
	for _, f := range fields {
		w := len(f) + 2
		if w < 10 {
			w = 10
		}
		if w > maxColW {
			w = maxColW
		}
		cols = append(cols, table.Column{Title: f, Width: w})
	}
	rows := make([]table.Row, 0, len(pipeline.Entities))
	for _, e := range pipeline.Entities {
		res, ok := m.last.Lookups[e]
		if !ok {
			continue
		}
		row := table.Row{e.String(), res.Status}
		for _, f := range fields {
			row = append(row, res.Attributes[f])
		}
		rows = append(rows, row)
	}
	// clear rows first so the table never holds rows wider than its columns
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(cols)
	m.tbl.SetRows(rows)
}
