package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ejmap/internal/features"
	"ejmap/internal/filter"
	"ejmap/internal/geom"
	"ejmap/internal/layers"
)

// Block group "a" straddles four z9 tiles around (0,0); "b" sits in one.
const twoGroups = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":"a","properties":{"POP10":100,"D_PM25_2":500},
  "geometry":{"type":"Polygon","coordinates":[[[-0.1,-0.1],[0.1,-0.1],[0.1,0.1],[-0.1,0.1],[-0.1,-0.1]]]}},
 {"type":"Feature","id":"b","properties":{"POP10":50,"D_PM25_2":9000},
  "geometry":{"type":"Polygon","coordinates":[[[0.5,0.5],[0.6,0.5],[0.6,0.6],[0.5,0.6],[0.5,0.5]]]}}
]}`

func loadedMap(t *testing.T) *Map {
	t.Helper()
	p := filepath.Join(t.TempDir(), "groups.geojson")
	require.NoError(t, os.WriteFile(p, []byte(twoGroups), 0o644))
	m := New(layers.Default(), Options{Width: 1024, Height: 768, MinZoom: 0, MaxZoom: 17})
	require.NoError(t, m.SetStyle(context.Background(), p))
	m.SetCenter(0, 0)
	m.SetZoom(9)
	return m
}

func TestProjectRoundTrip(t *testing.T) {
	for _, ll := range [][2]float64{{0, 0}, {-118.25, 34.05}, {151.2, -33.9}} {
		x, y := Project(ll[0], ll[1], 9)
		lon, lat := Unproject(x, y, 9)
		assert.InDelta(t, ll[0], lon, 1e-9)
		assert.InDelta(t, ll[1], lat, 1e-9)
	}
}

func TestTiles(t *testing.T) {
	assert.Equal(t, 0, LonToTile(-180, 0))
	assert.Equal(t, 1, LonToTile(0, 1))
	assert.Equal(t, 1, LatToTile(0, 1))
	assert.Equal(t, 3, LonToTile(180, 2), "clamped to the last column")
	assert.Equal(t, 0, LatToTile(89, 4))

	// downtown Los Angeles at z10
	assert.Equal(t, 175, LonToTile(-118.25, 10))
	assert.Equal(t, 408, LatToTile(34.05, 10))
}

func TestQueryRenderedFeaturesRepeatsPerTile(t *testing.T) {
	m := loadedMap(t)

	out, err := m.QueryRenderedFeatures("pm2.5-high")
	require.NoError(t, err)
	assert.Len(t, out, 5)
	for _, f := range out {
		assert.Equal(t, "pm2.5-high", f.Layer)
	}

	ix := features.Index(out, "D_PM25_2")
	assert.Equal(t, 2, ix.Len())
}

func TestQueryRenderedFeaturesRespectsZoomVisibilityAndFilter(t *testing.T) {
	m := loadedMap(t)

	low, err := m.QueryRenderedFeatures("pm2.5-low")
	require.NoError(t, err)
	assert.Empty(t, low, "low tier does not draw at z9")

	require.NoError(t, m.SetFilter("pm2.5-high", filter.Between("D_PM25_2", 0, 1000)))
	out, err := m.QueryRenderedFeatures("pm2.5-high")
	require.NoError(t, err)
	assert.Len(t, out, 4)
	assert.NotNil(t, m.Filter("pm2.5-high"))

	require.NoError(t, m.SetFilter("pm2.5-high", nil))
	assert.Nil(t, m.Filter("pm2.5-high"))

	require.NoError(t, m.SetLayoutProperty("pm2.5-high", Visibility, None))
	assert.False(t, m.Drawn("pm2.5-high"))
	out, err = m.QueryRenderedFeatures("pm2.5-high")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, None, m.LayoutProperty("pm2.5-high", Visibility))

	pop, err := m.QueryRenderedFeatures("population")
	require.NoError(t, err)
	assert.Len(t, pop, 5)
}

func TestQueryErrors(t *testing.T) {
	m := New(layers.Default(), Options{})
	_, err := m.QueryRenderedFeatures("pm2.5-high")
	assert.True(t, errors.Is(err, ErrNotLoaded))
	assert.False(t, m.Loaded())

	m = loadedMap(t)
	_, err = m.QueryRenderedFeatures("nope")
	assert.True(t, errors.Is(err, layers.ErrLayerNotFound))
	assert.True(t, errors.Is(m.SetFilter("nope", nil), layers.ErrLayerNotFound))
}

func TestSetStyleMissingFile(t *testing.T) {
	m := New(layers.Default(), Options{})
	err := m.SetStyle(context.Background(), filepath.Join(t.TempDir(), "missing.geojson"))
	assert.Error(t, err)
	assert.False(t, m.Loaded())
}

func TestSetStyleFailureKeepsPreviousStyle(t *testing.T) {
	m := loadedMap(t)
	prev := m.Style()

	err := m.SetStyle(context.Background(), filepath.Join(t.TempDir(), "missing.geojson"))
	assert.Error(t, err)
	assert.True(t, m.Loaded())
	assert.Equal(t, prev, m.Style())

	out, err := m.QueryRenderedFeatures("pm2.5-high")
	require.NoError(t, err)
	assert.Len(t, out, 5)
}

func TestFeaturesAt(t *testing.T) {
	m := loadedMap(t)

	hit, err := m.FeaturesAt(0, 0, "pm2.5-high")
	require.NoError(t, err)
	require.Len(t, hit, 1)
	assert.Equal(t, "a", hit[0].ID)

	miss, err := m.FeaturesAt(0.3, 0.3, "pm2.5-high")
	require.NoError(t, err)
	assert.Empty(t, miss)
}

func TestViewportGeometry(t *testing.T) {
	m := loadedMap(t)

	x, y := m.ToScreen(0, 0)
	assert.InDelta(t, 512, x, 1e-6)
	assert.InDelta(t, 384, y, 1e-6)
	lon, lat := m.FromScreen(x, y)
	assert.InDelta(t, 0, lon, 1e-9)
	assert.InDelta(t, 0, lat, 1e-9)

	assert.Equal(t, Tile{Z: 9, X: 256, Y: 256}, m.Tile(10))
	m.SetZoom(12.7)
	assert.Equal(t, 10, m.Tile(10).Z)

	m.SetZoom(9)
	m.Pan(100, 0)
	lon, _ = m.Center()
	assert.Greater(t, lon, 0.0)

	m.ZoomBy(100)
	assert.Equal(t, 17.0, m.Zoom())
}

func TestFitBounds(t *testing.T) {
	m := loadedMap(t)
	m.FitBounds(m.DataBounds())
	bb := m.Bounds()
	data := m.DataBounds()
	const eps = 1e-9
	assert.LessOrEqual(t, bb.MinX, data.MinX+eps)
	assert.GreaterOrEqual(t, bb.MaxX, data.MaxX-eps)
	assert.LessOrEqual(t, bb.MinY, data.MinY+eps)
	assert.GreaterOrEqual(t, bb.MaxY, data.MaxY-eps)

	z := m.Zoom()
	m.FitBounds(geom.EmptyBBox)
	assert.Equal(t, z, m.Zoom(), "invalid bounds are ignored")
}

func TestDraw(t *testing.T) {
	m := loadedMap(t)
	cv := NewCanvas(40, 20)
	assert.Equal(t, 2, m.Draw(cv, "pm2.5-high", DrawFill))
	w, h := cv.Cells()
	lit := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if cv.Mask(x, y) != 0 {
				lit++
			}
		}
	}
	assert.Positive(t, lit)
	assert.Zero(t, m.Draw(NewCanvas(10, 10), "pm2.5-low", DrawOutline))
}

func TestCanvas(t *testing.T) {
	cv := NewCanvas(2, 1)
	mw, mh := cv.Size()
	assert.Equal(t, 4, mw)
	assert.Equal(t, 4, mh)

	cv.Set(0, 0)
	cv.Set(1, 3)
	assert.Equal(t, uint8(0x01|0x80), cv.Mask(0, 0))
	assert.Equal(t, '⢁', Glyph(cv.Mask(0, 0)))
	assert.Equal(t, ' ', Glyph(0))

	cv.Set(-1, 0)
	cv.Set(100, 100)
	assert.Zero(t, cv.Mask(1, 0))

	cv.Line(0, 0, 3, 0)
	assert.NotZero(t, cv.Mask(1, 0))
	assert.Len(t, cv.Lines(), 1)
}
