package tui

import (
	"fmt"

	list "github.com/charmbracelet/bubbles/list"

	"ejmap/internal/format"
	"ejmap/internal/layers"
)

type indicatorItem struct {
	id, title, desc string
}

func (i indicatorItem) Title() string       { return i.title }
func (i indicatorItem) Description() string { return i.desc }
func (i indicatorItem) FilterValue() string { return i.title }

func indicatorItems(t *layers.Table) []list.Item {
	var items []list.Item
	for _, id := range t.Indicators() {
		p, err := t.Pair(id)
		if err != nil {
			continue
		}
		items = append(items, indicatorItem{
			id:    id,
			title: p.High.Label,
			desc:  fmt.Sprintf("%s  %s-%s", p.High.Field, format.Compact(p.High.Domain.Min), format.Compact(p.High.Domain.Max)),
		})
	}
	return items
}

// selectIndicator switches to the highlighted list entry.
func (m Model) selectIndicator() (Model, bool) {
	it, ok := m.l.SelectedItem().(indicatorItem)
	if !ok {
		return m, false
	}
	if err := m.s.ctrl.SelectIndicator(it.id); err != nil {
		m.status = "indicator error: " + err.Error()
		return m, false
	}
	m.status = "indicator: " + it.title
	if m.showAttrs {
		m.refreshAttrs()
	}
	return m, true
}
