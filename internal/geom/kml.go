package geom

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	geomlib "github.com/twpayne/go-geom"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlRing struct {
	LinearRing kmlCoords `xml:"LinearRing"`
}

type kmlPolygon struct {
	Outer kmlRing   `xml:"outerBoundaryIs"`
	Inner []kmlRing `xml:"innerBoundaryIs"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type kmlPlacemark struct {
	ID       string      `xml:"id,attr"`
	Name     string      `xml:"name"`
	Point    *kmlCoords  `xml:"Point"`
	Line     *kmlCoords  `xml:"LineString"`
	Polygon  *kmlPolygon `xml:"Polygon"`
	Extended []kmlData   `xml:"ExtendedData>Data"`
}

// LoadKML reads Placemarks from a KML file. Points, line strings and
// polygons are kept; ExtendedData entries become properties.
func LoadKML(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "kml: read %s", path)
	}
	c, err := ParseKML(data)
	if err != nil {
		return nil, eris.Wrapf(err, "kml: parse %s", path)
	}
	c.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return c, nil
}

// ParseKML decodes KML bytes. Placemarks may sit at any depth under
// Document or Folder elements.
func ParseKML(data []byte) (*Collection, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	c := newCollection("")
	n := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "decode")
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}
		var pm kmlPlacemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return nil, eris.Wrapf(err, "placemark %d", n)
		}
		if g := pm.geometry(); g != nil {
			id := pm.ID
			if id == "" {
				id = strconv.Itoa(n)
			}
			props := map[string]any{}
			if pm.Name != "" {
				props["name"] = pm.Name
			}
			for _, d := range pm.Extended {
				props[d.Name] = strings.TrimSpace(d.Value)
			}
			c.add(id, g, props)
		}
		n++
	}
	if c.Len() == 0 {
		return nil, eris.New("no placemarks found")
	}
	return c, nil
}

func (pm kmlPlacemark) geometry() geomlib.T {
	switch {
	case pm.Point != nil:
		cs := parseKMLCoords(pm.Point.Coordinates)
		if len(cs) == 0 {
			return nil
		}
		return geomlib.NewPointFlat(geomlib.XY, cs[0])
	case pm.Line != nil:
		cs := parseKMLCoords(pm.Line.Coordinates)
		if len(cs) < 2 {
			return nil
		}
		ls, err := geomlib.NewLineString(geomlib.XY).SetCoords(cs)
		if err != nil {
			return nil
		}
		return ls
	case pm.Polygon != nil:
		rings := [][]geomlib.Coord{parseKMLCoords(pm.Polygon.Outer.LinearRing.Coordinates)}
		if len(rings[0]) < 3 {
			return nil
		}
		for _, in := range pm.Polygon.Inner {
			if r := parseKMLCoords(in.LinearRing.Coordinates); len(r) >= 3 {
				rings = append(rings, r)
			}
		}
		p, err := geomlib.NewPolygon(geomlib.XY).SetCoords(rings)
		if err != nil {
			return nil
		}
		return p
	}
	return nil
}

// parseKMLCoords reads whitespace-separated "lon,lat[,alt]" tuples; altitude
// is ignored.
func parseKMLCoords(s string) []geomlib.Coord {
	var out []geomlib.Coord
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, geomlib.Coord{lon, lat})
	}
	return out
}
