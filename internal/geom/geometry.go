package geom

import (
	geomlib "github.com/twpayne/go-geom"
)

// Paths flattens a geometry into coordinate paths for drawing. Polygon
// rings are closed; a point becomes a single-vertex path.
func Paths(g geomlib.T) [][][2]float64 {
	var out [][][2]float64
	walk(g, func(coords []geomlib.Coord) {
		path := make([][2]float64, 0, len(coords))
		for _, c := range coords {
			if len(c) < 2 {
				continue
			}
			path = append(path, [2]float64{c[0], c[1]})
		}
		if len(path) > 0 {
			out = append(out, path)
		}
	})
	return out
}

func walk(g geomlib.T, fn func([]geomlib.Coord)) {
	switch v := g.(type) {
	case *geomlib.Point:
		fn([]geomlib.Coord{v.Coords()})
	case *geomlib.MultiPoint:
		for i := 0; i < v.NumPoints(); i++ {
			fn([]geomlib.Coord{v.Point(i).Coords()})
		}
	case *geomlib.LineString:
		fn(v.Coords())
	case *geomlib.MultiLineString:
		for i := 0; i < v.NumLineStrings(); i++ {
			fn(v.LineString(i).Coords())
		}
	case *geomlib.Polygon:
		for _, ring := range v.Coords() {
			fn(ring)
		}
	case *geomlib.MultiPolygon:
		for _, poly := range v.Coords() {
			for _, ring := range poly {
				fn(ring)
			}
		}
	case *geomlib.GeometryCollection:
		for _, sub := range v.Geoms() {
			walk(sub, fn)
		}
	}
}

// Contains reports whether (x, y) hits f. Polygons use an even-odd ray
// test over all rings; points and lines match within tol degrees.
func (f Feature) Contains(x, y, tol float64) bool {
	grown := BBox{MinX: f.BBox.MinX - tol, MinY: f.BBox.MinY - tol, MaxX: f.BBox.MaxX + tol, MaxY: f.BBox.MaxY + tol}
	if !grown.Contains(x, y) {
		return false
	}
	return hit(f.Geometry, x, y, tol)
}

func hit(g geomlib.T, x, y, tol float64) bool {
	switch v := g.(type) {
	case *geomlib.Polygon:
		return inRings(v.Coords(), x, y)
	case *geomlib.MultiPolygon:
		for _, poly := range v.Coords() {
			if inRings(poly, x, y) {
				return true
			}
		}
		return false
	case *geomlib.GeometryCollection:
		for _, sub := range v.Geoms() {
			if hit(sub, x, y, tol) {
				return true
			}
		}
		return false
	}
	for _, path := range Paths(g) {
		for _, p := range path {
			if abs(p[0]-x) <= tol && abs(p[1]-y) <= tol {
				return true
			}
		}
	}
	return false
}

func inRings(rings [][]geomlib.Coord, x, y float64) bool {
	in := false
	for _, ring := range rings {
		n := len(ring)
		for i, j := 0, n-1; i < n; j, i = i, i+1 {
			xi, yi := ring[i][0], ring[i][1]
			xj, yj := ring[j][0], ring[j][1]
			if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
				in = !in
			}
		}
	}
	return in
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
