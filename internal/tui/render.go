package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ejmap/internal/render"
)

// cellToLonLat converts a map cell back to lon/lat through the map's
// virtual viewport.
func (m Model) cellToLonLat(cx, cy, w, h int) (float64, float64) {
	vw, vh := m.s.mp.Size()
	px := (float64(cx) + 0.5) * float64(vw) / float64(max(1, w))
	py := (float64(cy) + 0.5) * float64(vh) / float64(max(1, h))
	return m.s.mp.FromScreen(px, py)
}

type cellKind int

const (
	cellEmpty cellKind = iota
	cellBase
	cellHighlight
	cellHover
)

// renderMap draws the visible fill layer as braille outlines and the
// highlight layer filled on top of it.
func (m Model) renderMap(w, h int) string {
	base := render.NewCanvas(w, h)
	hi := render.NewCanvas(w, h)
	if fill, ok := m.visibleFill(); ok {
		m.s.mp.Draw(base, fill.ID, render.DrawOutline)
	}
	if d, err := m.s.mp.Table().Highlight(m.s.ctrl.Indicator()); err == nil {
		m.s.mp.Draw(hi, d.ID, render.DrawFill)
	}

	var sb strings.Builder
	for y := 0; y < h; y++ {
		// consecutive cells of one kind share a single styled run
		var run []rune
		kind := cellEmpty
		flush := func() {
			if len(run) > 0 {
				sb.WriteString(styleFor(kind).Render(string(run)))
				run = run[:0]
			}
		}
		for x := 0; x < w; x++ {
			r, k := ' ', cellEmpty
			hm, bm := hi.Mask(x, y), base.Mask(x, y)
			switch {
			case m.hovering && x == m.hoverX && y == m.hoverY:
				r, k = '◯', cellHover
			case hm != 0:
				r, k = render.Glyph(hm|bm), cellHighlight
			case bm != 0:
				r, k = render.Glyph(bm), cellBase
			}
			if k != kind {
				flush()
				kind = k
			}
			run = append(run, r)
		}
		flush()
		if y < h-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func styleFor(k cellKind) lipgloss.Style {
	switch k {
	case cellBase:
		return outlineStyle
	case cellHighlight:
		return highlightStyle
	case cellHover:
		return hoverStyle
	}
	return plainStyle
}
