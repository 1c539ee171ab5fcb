package geom

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	geomlib "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

type rawFeature struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

type rawDoc struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

// LoadGeoJSON reads a Feature, FeatureCollection or bare geometry.
func LoadGeoJSON(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geojson: read %s", path)
	}
	c, err := ParseGeoJSON(data)
	if err != nil {
		return nil, eris.Wrapf(err, "geojson: parse %s", path)
	}
	c.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return c, nil
}

// ParseGeoJSON decodes GeoJSON bytes. Features without an id are numbered
// by position; the id of a duplicated feature is kept so the renderer can
// treat the copies as one identity.
func ParseGeoJSON(data []byte) (*Collection, error) {
	var doc rawDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "decode")
	}
	c := newCollection("")
	switch doc.Type {
	case "FeatureCollection":
		for i, f := range doc.Features {
			if err := addRawFeature(c, i, f); err != nil {
				return nil, err
			}
		}
	case "Feature":
		var f rawFeature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, eris.Wrap(err, "decode feature")
		}
		if err := addRawFeature(c, 0, f); err != nil {
			return nil, err
		}
	case "":
		return nil, eris.New("missing type")
	default:
		var g geomlib.T
		if err := geojson.Unmarshal(data, &g); err != nil {
			return nil, eris.Wrapf(err, "decode %s geometry", doc.Type)
		}
		c.add("0", g, nil)
	}
	if c.Len() == 0 {
		return nil, eris.New("no geometries found")
	}
	return c, nil
}

func addRawFeature(c *Collection, idx int, f rawFeature) error {
	if len(f.Geometry) == 0 || bytes.Equal(bytes.TrimSpace(f.Geometry), []byte("null")) {
		return nil
	}
	var g geomlib.T
	if err := geojson.Unmarshal(f.Geometry, &g); err != nil {
		return eris.Wrapf(err, "feature %d geometry", idx)
	}
	c.add(featureID(f.ID, f.Properties, idx), g, f.Properties)
	return nil
}

// featureID prefers the GeoJSON id, then a GEOID/id property, then position.
func featureID(raw json.RawMessage, props map[string]any, idx int) string {
	if len(raw) > 0 {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	for _, k := range []string{"GEOID", "GEOID10", "id", "ID"} {
		switch v := props[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return strconv.Itoa(idx)
}
