package geom

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	geomlib "github.com/twpayne/go-geom"
)

// LoadShapefile reads a .shp file and its .dbf attributes. Numeric dbf
// values stay strings; property coercion happens at query time.
func LoadShapefile(path string) (*Collection, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "shapefile: open %s", path)
	}
	defer reader.Close()

	fields := reader.Fields()
	names := make([]string, len(fields))
	idIdx := -1
	for i, f := range fields {
		names[i] = strings.Trim(f.String(), "\x00 ")
		switch strings.ToLower(names[i]) {
		case "id", "geoid", "geoid10":
			if idIdx == -1 {
				idIdx = i
			}
		}
	}

	c := newCollection(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	for reader.Next() {
		n, shape := reader.Shape()
		g := shapeGeometry(shape)
		if g == nil {
			continue
		}
		props := make(map[string]any, len(names))
		for i, name := range names {
			props[name] = strings.TrimSpace(reader.Attribute(i))
		}
		id := strconv.Itoa(n)
		if idIdx >= 0 {
			if v, _ := props[names[idIdx]].(string); v != "" {
				id = v
			}
		}
		c.add(id, g, props)
	}
	if err := reader.Err(); err != nil {
		return nil, eris.Wrapf(err, "shapefile: read %s", path)
	}
	if c.Len() == 0 {
		return nil, eris.Errorf("shapefile: no shapes in %s", path)
	}
	return c, nil
}

func shapeGeometry(s shp.Shape) geomlib.T {
	switch v := s.(type) {
	case *shp.Point:
		return geomlib.NewPointFlat(geomlib.XY, []float64{v.X, v.Y})
	case *shp.PolyLine:
		parts := splitParts(v.Parts, v.Points)
		ls := geomlib.NewMultiLineString(geomlib.XY)
		for _, p := range parts {
			if len(p) < 2 {
				continue
			}
			line, err := geomlib.NewLineString(geomlib.XY).SetCoords(p)
			if err != nil {
				continue
			}
			_ = ls.Push(line)
		}
		if ls.NumLineStrings() == 0 {
			return nil
		}
		return ls
	case *shp.Polygon:
		return ringsToPolygons(splitParts(v.Parts, v.Points))
	}
	return nil
}

func splitParts(parts []int32, pts []shp.Point) [][]geomlib.Coord {
	out := make([][]geomlib.Coord, 0, len(parts))
	for i, start := range parts {
		end := int32(len(pts))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || int(end) > len(pts) {
			continue
		}
		ring := make([]geomlib.Coord, 0, end-start)
		for _, p := range pts[start:end] {
			ring = append(ring, geomlib.Coord{p.X, p.Y})
		}
		out = append(out, ring)
	}
	return out
}

// ringsToPolygons groups shapefile rings into polygons: clockwise rings are
// outer boundaries, counter-clockwise rings are holes of the preceding outer.
func ringsToPolygons(rings [][]geomlib.Coord) geomlib.T {
	mp := geomlib.NewMultiPolygon(geomlib.XY)
	var current [][]geomlib.Coord
	flush := func() {
		if len(current) == 0 {
			return
		}
		p, err := geomlib.NewPolygon(geomlib.XY).SetCoords(current)
		if err == nil {
			_ = mp.Push(p)
		}
		current = nil
	}
	for _, r := range rings {
		if len(r) < 3 {
			continue
		}
		if signedArea(r) <= 0 || len(current) == 0 {
			flush()
		}
		current = append(current, r)
	}
	flush()
	switch mp.NumPolygons() {
	case 0:
		return nil
	case 1:
		return mp.Polygon(0)
	}
	return mp
}

// signedArea is negative for clockwise rings.
func signedArea(r []geomlib.Coord) float64 {
	var a float64
	for i := range r {
		j := (i + 1) % len(r)
		a += r[i][0]*r[j][1] - r[j][0]*r[i][1]
	}
	return a / 2
}
