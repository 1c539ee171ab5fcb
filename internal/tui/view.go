package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ejmap/internal/format"
	"ejmap/internal/histogram"
	"ejmap/internal/layers"
	"ejmap/internal/rangefilter"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	lay := m.layout()
	contentWidth := max(10, m.width)

	header := titleStyle.Render(" ejmap ─ environmental justice explorer ")
	header = lipgloss.NewStyle().Width(contentWidth).Render(header)

	var mapView string
	if m.showAttrs {
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		maxW := min(lay.mapW, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(lay.mapH-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(lay.mapW, lay.mapH, lipgloss.Center, lipgloss.Center, attrsBox)
	} else {
		mapView = lipgloss.NewStyle().Width(lay.mapW).Height(lay.mapH).Render(m.renderMap(lay.mapW, lay.mapH))
	}

	cols := []string{}
	if m.showSidebar {
		side := m.l.View()
		if m.showFiles {
			side = m.files.View()
		}
		cols = append(cols, lipgloss.NewStyle().Width(lay.sidebarW).Render(side), " ")
	}
	cols = append(cols, mapView, " ", m.renderPanel(lay.panelW, lay.contentH))
	body := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	status := dimStyle.Render(" " + m.status + " ")
	help := ""
	if m.helpVisible {
		help = m.help.View(keys)
	}
	coords := ""
	if m.hovering {
		coords = dimStyle.Render(fmt.Sprintf("  lon=%.5f lat=%.5f  ", m.hoverLon, m.hoverLat))
	}
	spacer := strings.Repeat(" ", max(0, contentWidth-lipgloss.Width(status)-lipgloss.Width(coords)))
	footer := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Width(contentWidth).Render(status+spacer+coords),
		lipgloss.NewStyle().Width(contentWidth).Render(help),
	)

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

// renderPanel is the right-hand column: summary, histogram, range and
// tooltip.
func (m Model) renderPanel(w, h int) string {
	v := m.s.view
	inner := w - 4
	var b strings.Builder

	b.WriteString(titleStyle.Render(truncate(v.Label, inner)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("zoom %.2f  %s", v.Zoom, layers.TierFor(v.Zoom))))
	b.WriteString("\n\n")

	switch {
	case v.Hidden:
		b.WriteString(dimStyle.Render("layers hidden (x to show)"))
		b.WriteString("\n")
	case !v.Available():
		b.WriteString(dimStyle.Render(fmt.Sprintf("zoom in to %g for a summary", layers.HighZoom)))
		b.WriteString("\n")
	default:
		s := v.Summary
		b.WriteString(row("Population", format.Commas(s.TotalPopulation)))
		b.WriteString(row("Block groups", format.Commas(float64(s.DistinctFeatureCount))))
		if med, ok := s.Median(); ok {
			b.WriteString(row("Median", format.Compact(med)))
		}
		b.WriteString("\n")
		b.WriteString(renderHistogram(v.Bins, v.Range, inner, 6))
		b.WriteString("\n")
		b.WriteString(axis(v.Domain, inner))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	sel := v.Range
	label := "Range"
	if m.sliderFocus {
		sel = m.s.ctrl.Range().Pending()
		label = focusStyle.Render("Range*")
	}
	b.WriteString(renderSlider(v.Domain, sel, inner, m.sliderFocus))
	b.WriteString("\n")
	b.WriteString(row(label, format.Compact(sel.Low)+" - "+format.Compact(sel.High)))

	if tip := v.Tooltip; tip != nil {
		lines := []string{
			valueStyle.Render(tip.Label),
			fmt.Sprintf("%s: %s", tip.FeatureID, format.Commas(tip.Value)),
			dimStyle.Render(fmt.Sprintf("tile %d/%d/%d", tip.Tile.Z, tip.Tile.X, tip.Tile.Y)),
		}
		if tip.Pinned {
			lines = append(lines, dimStyle.Render("pinned"))
		}
		b.WriteString("\n")
		b.WriteString(tooltipStyle.Width(inner).Render(strings.Join(lines, "\n")))
	}
	return boxStyle.Width(w - 2).Height(max(1, h-2)).Render(b.String())
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}

var eighths = []rune(" ▁▂▃▄▅▆▇█")

// renderHistogram draws bins as vertical bars, height rows tall. Bins lying
// inside sel are drawn in the highlight colour.
func renderHistogram(bins []histogram.Bin, sel rangefilter.Selection, width, height int) string {
	if len(bins) == 0 || width <= 0 {
		return ""
	}
	top := histogram.MaxCount(bins)
	colW := max(1, width/len(bins))
	rows := make([]strings.Builder, height)
	for _, bin := range bins {
		level := 0
		if top > 0 {
			level = int(math.Round(float64(bin.Count) / float64(top) * float64(height*8)))
		}
		if bin.Count > 0 && level == 0 {
			level = 1
		}
		st := barDimStyle
		if bin.X0 >= sel.Low && bin.X1 <= sel.High {
			st = barStyle
		}
		for r := 0; r < height; r++ {
			// row 0 is the top
			fill := level - (height-1-r)*8
			fill = max(0, min(8, fill))
			rows[r].WriteString(st.Render(strings.Repeat(string(eighths[fill]), colW)))
		}
	}
	out := make([]string, height)
	for i := range rows {
		out[i] = rows[i].String()
	}
	return strings.Join(out, "\n")
}

func axis(d layers.Domain, width int) string {
	lo, hi := format.Compact(d.Min), format.Compact(d.Max)
	gap := max(1, width-len(lo)-len(hi))
	return dimStyle.Render(lo + strings.Repeat(" ", gap) + hi)
}

// renderSlider draws the domain as a track with the selection bold.
func renderSlider(d layers.Domain, sel rangefilter.Selection, width int, focused bool) string {
	if width < 2 || !d.Valid() {
		return ""
	}
	pos := func(v float64) int {
		t := (d.Clamp(v) - d.Min) / (d.Max - d.Min)
		return int(math.Round(t * float64(width-1)))
	}
	lo, hi := pos(sel.Low), pos(sel.High)
	thumb := barStyle
	if focused {
		thumb = focusStyle
	}
	var b strings.Builder
	for i := 0; i < width; i++ {
		switch {
		case i == lo || i == hi:
			b.WriteString(thumb.Render("●"))
		case i > lo && i < hi:
			b.WriteString(barStyle.Render("━"))
		default:
			b.WriteString(barDimStyle.Render("─"))
		}
	}
	return b.String()
}
