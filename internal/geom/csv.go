package geom

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	geomlib "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// LoadCSV reads a CSV whose rows carry either a WKT geometry column
// (wkt|geometry|geom|the_geom) or latitude/longitude columns
// (lat|latitude|y and lon|lng|long|longitude|x, case-insensitive).
// Every other column becomes a string property.
func LoadCSV(path string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: open %s", path)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	recs, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "csv: read %s", path)
	}
	if len(recs) == 0 {
		return nil, eris.New("csv: empty file")
	}
	header := recs[0]
	idxLat, idxLon, idxWKT, idxID := -1, -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
			}
		case "wkt", "geometry", "geom", "the_geom":
			if idxWKT == -1 {
				idxWKT = i
			}
		case "id", "geoid", "geoid10":
			if idxID == -1 {
				idxID = i
			}
		}
	}
	if idxWKT == -1 && (idxLat == -1 || idxLon == -1) {
		return nil, eris.New("csv: no geometry or latitude/longitude columns found")
	}

	c := newCollection(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	for n, row := range recs[1:] {
		g := rowGeometry(row, idxWKT, idxLat, idxLon)
		if g == nil {
			continue
		}
		props := make(map[string]any, len(header))
		for i, h := range header {
			if i == idxWKT || i >= len(row) {
				continue
			}
			props[h] = strings.TrimSpace(row[i])
		}
		id := strconv.Itoa(n)
		if idxID >= 0 && idxID < len(row) && strings.TrimSpace(row[idxID]) != "" {
			id = strings.TrimSpace(row[idxID])
		}
		c.add(id, g, props)
	}
	if c.Len() == 0 {
		return nil, eris.New("csv: no valid geometries parsed")
	}
	return c, nil
}

func rowGeometry(row []string, idxWKT, idxLat, idxLon int) geomlib.T {
	if idxWKT >= 0 && idxWKT < len(row) {
		if g, err := wkt.Unmarshal(strings.TrimSpace(row[idxWKT])); err == nil {
			return g
		}
	}
	if idxLat < 0 || idxLon < 0 || idxLon >= len(row) || idxLat >= len(row) {
		return nil
	}
	lon, err1 := strconv.ParseFloat(strings.TrimSpace(row[idxLon]), 64)
	lat, err2 := strconv.ParseFloat(strings.TrimSpace(row[idxLat]), 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return geomlib.NewPointFlat(geomlib.XY, []float64{lon, lat})
}
