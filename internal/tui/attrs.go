package tui

import (
	"encoding/json"
	"fmt"
	"sort"

	table "github.com/charmbracelet/bubbles/table"
	"go.uber.org/zap"

	"ejmap/internal/features"
)

const maxAttrRows = 500

// refreshAttrs rebuilds the table from the features of the visible fill
// layer currently on screen.
func (m *Model) refreshAttrs() {
	cols, rows := m.buildAttributes()
	if len(cols) == 0 || len(rows) == 0 {
		m.showAttrs = false
		m.status = "no attributes in view"
		return
	}
	tcols := make([]table.Column, 0, len(cols)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	maxColW := 24
	for _, c := range cols {
		tcols = append(tcols, table.Column{Title: c, Width: min(len(c)+2, maxColW)})
	}
	trows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		row := make([]string, 0, len(tcols))
		row = append(row, fmt.Sprintf("%d", i+1))
		row = append(row, r...)
		trows = append(trows, table.Row(row))
	}
	// clear rows first so the table never sees rows wider than its columns
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
}

// buildAttributes unions the property keys of the rendered features, one
// row per distinct feature.
func (m *Model) buildAttributes() ([]string, [][]string) {
	fill, ok := m.visibleFill()
	if !ok {
		return nil, nil
	}
	rendered, err := m.s.mp.QueryRenderedFeatures(fill.ID)
	if err != nil {
		zap.L().Debug("attributes query", zap.Error(err))
		return nil, nil
	}
	seen := map[string]bool{}
	var distinct []features.Rendered
	keys := map[string]bool{}
	for _, f := range rendered {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		distinct = append(distinct, f)
		for k := range f.Properties {
			keys[k] = true
		}
		if len(distinct) == maxAttrRows {
			break
		}
	}
	order := make([]string, 0, len(keys))
	for k := range keys {
		order = append(order, k)
	}
	sort.Strings(order)

	rows := make([][]string, 0, len(distinct))
	for _, f := range distinct {
		vals := make([]string, 0, len(order))
		for _, k := range order {
			vals = append(vals, cellText(f.Properties[k]))
		}
		rows = append(rows, vals)
	}
	return order, rows
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		bs, _ := json.Marshal(t)
		return string(bs)
	}
}
