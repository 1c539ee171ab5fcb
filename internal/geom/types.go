package geom

import (
	geomlib "github.com/twpayne/go-geom"
)

type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Valid reports whether the box has been set and is not inverted.
func (b BBox) Valid() bool { return b.MaxX >= b.MinX && b.MaxY >= b.MinY }

// Extend grows b to include other. An invalid b is replaced.
func (b BBox) Extend(other BBox) BBox {
	if !b.Valid() {
		return other
	}
	if other.MinX < b.MinX {
		b.MinX = other.MinX
	}
	if other.MinY < b.MinY {
		b.MinY = other.MinY
	}
	if other.MaxX > b.MaxX {
		b.MaxX = other.MaxX
	}
	if other.MaxY > b.MaxY {
		b.MaxY = other.MaxY
	}
	return b
}

// Overlaps reports whether the boxes share any point, edges included.
func (b BBox) Overlaps(o BBox) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

func (b BBox) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// EmptyBBox is inverted so the first Extend replaces it.
var EmptyBBox = BBox{MinX: 1, MinY: 1, MaxX: -1, MaxY: -1}

func boundsToBBox(b *geomlib.Bounds) BBox {
	if b == nil || b.IsEmpty() {
		return EmptyBBox
	}
	return BBox{MinX: b.Min(0), MinY: b.Min(1), MaxX: b.Max(0), MaxY: b.Max(1)}
}

// Feature is one geometry with its attributes.
type Feature struct {
	ID         string
	Geometry   geomlib.T
	Properties map[string]any
	BBox       BBox
}

// Collection is a loaded dataset. Copies of one real-world feature share
// an id.
type Collection struct {
	Name     string
	Features []Feature
	BBox     BBox
}

func newCollection(name string) *Collection {
	return &Collection{Name: name, BBox: EmptyBBox}
}

// add appends a feature, computing its bbox from the geometry.
func (c *Collection) add(id string, g geomlib.T, props map[string]any) {
	if g == nil {
		return
	}
	if props == nil {
		props = map[string]any{}
	}
	bb := boundsToBBox(g.Bounds())
	if !bb.Valid() {
		return
	}
	c.Features = append(c.Features, Feature{ID: id, Geometry: g, Properties: props, BBox: bb})
	c.BBox = c.BBox.Extend(bb)
}

func (c *Collection) Len() int { return len(c.Features) }
