package geom

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	geomlib "github.com/twpayne/go-geom"
)

const blockGroups = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "060371",
     "geometry": {"type": "Polygon", "coordinates": [[[-118.3,34.0],[-118.2,34.0],[-118.2,34.1],[-118.3,34.1],[-118.3,34.0]]]},
     "properties": {"POP10": 1200, "D_PM25_2": 4500}},
    {"type": "Feature",
     "geometry": {"type": "Polygon", "coordinates": [[[-118.2,34.0],[-118.1,34.0],[-118.1,34.1],[-118.2,34.1],[-118.2,34.0]]]},
     "properties": {"GEOID": "060372", "POP10": 800}},
    {"type": "Feature", "geometry": null, "properties": {"POP10": 5}},
    {"type": "Feature",
     "geometry": {"type": "Point", "coordinates": [-118.15, 34.05]},
     "properties": {}}
  ]
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestParseGeoJSONCollection(t *testing.T) {
	c, err := ParseGeoJSON([]byte(blockGroups))
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	assert.Equal(t, "060371", c.Features[0].ID)
	assert.Equal(t, "060372", c.Features[1].ID)
	assert.Equal(t, "3", c.Features[2].ID, "falls back to position")
	assert.Equal(t, 1200.0, c.Features[0].Properties["POP10"])

	assert.InDelta(t, -118.3, c.BBox.MinX, 1e-9)
	assert.InDelta(t, -118.1, c.BBox.MaxX, 1e-9)
	assert.InDelta(t, 34.1, c.BBox.MaxY, 1e-9)
}

func TestParseGeoJSONSingleFeatureAndGeometry(t *testing.T) {
	c, err := ParseGeoJSON([]byte(`{"type":"Feature","id":7,"geometry":{"type":"Point","coordinates":[1,2]},"properties":{"a":"b"}}`))
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "7", c.Features[0].ID)

	c, err = ParseGeoJSON([]byte(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`))
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	_, ok := c.Features[0].Geometry.(*geomlib.LineString)
	assert.True(t, ok)
}

func TestParseGeoJSONErrors(t *testing.T) {
	for name, body := range map[string]string{
		"not json":     `{`,
		"missing type": `{"features":[]}`,
		"empty":        `{"type":"FeatureCollection","features":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseGeoJSON([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestLoadCSV(t *testing.T) {
	t.Run("wkt column", func(t *testing.T) {
		p := writeFile(t, "groups.csv", "geoid,wkt,POP10\n"+
			"g1,\"POLYGON((0 0,1 0,1 1,0 1,0 0))\",10\n"+
			"g2,\"POINT(2 3)\",4\n")
		c, err := LoadCSV(p)
		require.NoError(t, err)
		assert.Equal(t, "groups", c.Name)
		require.Equal(t, 2, c.Len())
		assert.Equal(t, "g1", c.Features[0].ID)
		assert.Equal(t, "10", c.Features[0].Properties["POP10"])
		_, hasWKT := c.Features[0].Properties["wkt"]
		assert.False(t, hasWKT)
	})
	t.Run("lat lon columns", func(t *testing.T) {
		p := writeFile(t, "sites.csv", "name,Latitude,Longitude\nA,34.05,-118.25\nB,bad,1\n")
		c, err := LoadCSV(p)
		require.NoError(t, err)
		require.Equal(t, 1, c.Len())
		pt := c.Features[0].Geometry.(*geomlib.Point)
		assert.Equal(t, []float64{-118.25, 34.05}, pt.FlatCoords())
	})
	t.Run("no geometry", func(t *testing.T) {
		p := writeFile(t, "x.csv", "a,b\n1,2\n")
		_, err := LoadCSV(p)
		assert.Error(t, err)
	})
}

const placemarks = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
 <Document>
  <Folder>
   <Placemark id="site-1">
    <name>Refinery</name>
    <ExtendedData><Data name="POP10"><value>42</value></Data></ExtendedData>
    <Point><coordinates>-118.2,33.8,0</coordinates></Point>
   </Placemark>
  </Folder>
  <Placemark>
   <Polygon><outerBoundaryIs><LinearRing><coordinates>
     0,0 1,0 1,1 0,1 0,0
   </coordinates></LinearRing></outerBoundaryIs></Polygon>
  </Placemark>
 </Document>
</kml>`

func TestParseKML(t *testing.T) {
	c, err := ParseKML([]byte(placemarks))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	assert.Equal(t, "site-1", c.Features[0].ID)
	assert.Equal(t, "Refinery", c.Features[0].Properties["name"])
	assert.Equal(t, "42", c.Features[0].Properties["POP10"])
	assert.Equal(t, "1", c.Features[1].ID)
	_, ok := c.Features[1].Geometry.(*geomlib.Polygon)
	assert.True(t, ok)
}

func TestLoadDispatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "population.geojson"), []byte(blockGroups), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sites.kml"), []byte(placemarks), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	c, err := Load(filepath.Join(dir, "population.geojson"))
	require.NoError(t, err)
	assert.Equal(t, "population", c.Name)

	_, err = Load(filepath.Join(dir, "notes.txt"))
	assert.True(t, errors.Is(err, ErrUnsupported))

	all, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Contains(t, all, "population")
	assert.Contains(t, all, "sites")

	_, err = LoadDir(t.TempDir())
	assert.Error(t, err)
}

func TestFeatureContains(t *testing.T) {
	c, err := ParseGeoJSON([]byte(`{"type":"FeatureCollection","features":[
	  {"type":"Feature","geometry":{"type":"Polygon","coordinates":[
	    [[0,0],[10,0],[10,10],[0,10],[0,0]],
	    [[4,4],[6,4],[6,6],[4,6],[4,4]]]}},
	  {"type":"Feature","geometry":{"type":"Point","coordinates":[20,20]}}]}`))
	require.NoError(t, err)
	poly, pt := c.Features[0], c.Features[1]

	assert.True(t, poly.Contains(1, 1, 0))
	assert.False(t, poly.Contains(5, 5, 0), "inside the hole")
	assert.False(t, poly.Contains(11, 5, 0))

	assert.True(t, pt.Contains(20.05, 19.95, 0.1))
	assert.False(t, pt.Contains(21, 20, 0.1))
}

func TestBBox(t *testing.T) {
	assert.False(t, EmptyBBox.Valid())
	b := EmptyBBox.Extend(BBox{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1})
	assert.Equal(t, BBox{MinX: 0, MinY: 0, MaxX: 1, MaxY: 1}, b)
	b = b.Extend(BBox{MinX: -1, MinY: 0.5, MaxX: 0.5, MaxY: 3})
	assert.Equal(t, BBox{MinX: -1, MinY: 0, MaxX: 1, MaxY: 3}, b)

	assert.True(t, b.Overlaps(BBox{MinX: 1, MinY: 3, MaxX: 2, MaxY: 4}))
	assert.False(t, b.Overlaps(BBox{MinX: 1.1, MinY: 0, MaxX: 2, MaxY: 1}))
}

func TestPaths(t *testing.T) {
	poly := geomlib.NewPolygonFlat(geomlib.XY, []float64{0, 0, 1, 0, 1, 1, 0, 0}, []int{8})
	paths := Paths(poly)
	require.Len(t, paths, 1)
	assert.Len(t, paths[0], 4)

	pt := geomlib.NewPointFlat(geomlib.XY, []float64{3, 4})
	assert.Equal(t, [][][2]float64{{{3, 4}}}, Paths(pt))
}
