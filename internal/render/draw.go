package render

import (
	geomlib "github.com/twpayne/go-geom"

	"ejmap/internal/filter"
	"ejmap/internal/geom"
)

// DrawMode selects how polygons are painted.
type DrawMode int

const (
	DrawOutline DrawMode = iota
	DrawFill
)

// Draw paints the features of layerID onto cv, scaling the virtual
// viewport to the canvas. Hidden layers and filtered-out features are
// skipped. Returns the number of features drawn.
func (m *Map) Draw(cv *Canvas, layerID string, mode DrawMode) int {
	d, err := m.descriptor(layerID)
	if err != nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.loaded || !m.drawnLocked(d) {
		return 0
	}
	src := m.sourceLocked(d)
	if src == nil {
		return 0
	}
	view := m.boundsLocked()
	expr := m.filters[d.ID]
	wMic, hMic := cv.Size()
	sx := float64(wMic) / float64(m.opts.Width)
	sy := float64(hMic) / float64(m.opts.Height)
	toMicro := func(p [2]float64) [2]int {
		x, y := m.toScreenLocked(p[0], p[1])
		return [2]int{int(x * sx), int(y * sy)}
	}

	n := 0
	for _, f := range src.Features {
		if !f.BBox.Overlaps(view) || !filter.Eval(expr, f.Properties) {
			continue
		}
		drawFeature(cv, f, mode, toMicro)
		n++
	}
	return n
}

func drawFeature(cv *Canvas, f geom.Feature, mode DrawMode, toMicro func([2]float64) [2]int) {
	polygonal := false
	switch f.Geometry.(type) {
	case *geomlib.Polygon, *geomlib.MultiPolygon:
		polygonal = true
	}
	var rings [][][2]int
	for _, path := range geom.Paths(f.Geometry) {
		pts := make([][2]int, 0, len(path))
		for _, p := range path {
			pts = append(pts, toMicro(p))
		}
		switch {
		case len(pts) == 1:
			cv.Set(pts[0][0], pts[0][1])
		case polygonal:
			rings = append(rings, pts)
		default:
			for i := 1; i < len(pts); i++ {
				cv.Line(pts[i-1][0], pts[i-1][1], pts[i][0], pts[i][1])
			}
		}
	}
	if len(rings) == 0 {
		return
	}
	if mode == DrawFill {
		cv.Fill(rings)
	}
	cv.Outline(rings)
}
