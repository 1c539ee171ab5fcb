// Package render is an in-process map engine: a web-mercator viewport over
// loaded feature collections, with per-layer visibility and filters, and
// feature queries that repeat a feature once per slippy tile it spans.
package render

import (
	"context"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"ejmap/internal/features"
	"ejmap/internal/filter"
	"ejmap/internal/geom"
	"ejmap/internal/layers"
)

// ErrNotLoaded is returned by queries before a style has been loaded.
var ErrNotLoaded = eris.New("map style not loaded")

// DefaultSource names the collection used by layers whose source is
// missing from the loaded style.
const DefaultSource = "default"

const (
	Visibility = "visibility"
	Visible    = "visible"
	None       = "none"
)

// Options sizes and bounds the viewport. Width and Height are virtual
// pixels; front ends scale them to whatever they draw on.
type Options struct {
	Width   int
	Height  int
	MinZoom float64
	MaxZoom float64
}

// Map is safe for concurrent use.
type Map struct {
	mu sync.RWMutex

	table   *layers.Table
	opts    Options
	sources map[string]*geom.Collection
	style   string
	loaded  bool

	filters map[string]filter.Expression
	layout  map[string]map[string]any

	lon, lat, zoom float64
}

func New(table *layers.Table, opts Options) *Map {
	if opts.Width <= 0 {
		opts.Width = 1024
	}
	if opts.Height <= 0 {
		opts.Height = 768
	}
	if opts.MaxZoom <= 0 {
		opts.MaxZoom = 22
	}
	if opts.MinZoom > opts.MaxZoom {
		opts.MinZoom = opts.MaxZoom
	}
	return &Map{
		table:   table,
		opts:    opts,
		sources: map[string]*geom.Collection{},
		filters: map[string]filter.Expression{},
		layout:  map[string]map[string]any{},
		zoom:    opts.MinZoom,
	}
}

// SetStyle loads the dataset at id. A file becomes the default source; a
// directory registers each supported file under its base name, and the
// first one (by name) also serves as the default source. On failure the
// previous style stays loaded.
func (m *Map) SetStyle(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "set style")
	}
	info, err := os.Stat(id)
	if err != nil {
		return eris.Wrapf(err, "set style %s", id)
	}
	sources := map[string]*geom.Collection{}
	if info.IsDir() {
		cols, err := geom.LoadDir(id)
		if err != nil {
			return eris.Wrapf(err, "set style %s", id)
		}
		names := make([]string, 0, len(cols))
		for name := range cols {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sources[name] = cols[name]
		}
		if _, ok := sources[DefaultSource]; !ok {
			sources[DefaultSource] = cols[names[0]]
		}
	} else {
		c, err := geom.Load(id)
		if err != nil {
			return eris.Wrapf(err, "set style %s", id)
		}
		sources[c.Name] = c
		sources[DefaultSource] = c
	}
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "set style")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = sources
	m.style = id
	m.filters = map[string]filter.Expression{}
	m.layout = map[string]map[string]any{}
	m.loaded = true
	zap.L().Debug("style loaded", zap.String("style", id), zap.Int("sources", len(sources)))
	return nil
}

// AddSource registers a collection directly and marks the map loaded.
func (m *Map) AddSource(name string, c *geom.Collection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[name] = c
	if _, ok := m.sources[DefaultSource]; !ok {
		m.sources[DefaultSource] = c
	}
	m.loaded = true
}

func (m *Map) Style() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.style
}

func (m *Map) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

func (m *Map) Table() *layers.Table { return m.table }

// DataBounds is the union of all loaded sources.
func (m *Map) DataBounds() geom.BBox {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bb := geom.EmptyBBox
	for _, c := range m.sources {
		bb = bb.Extend(c.BBox)
	}
	return bb
}

// Zoom returns the current zoom.
func (m *Map) Zoom() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.zoom
}

// Center returns the map centre.
func (m *Map) Center() (float64, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lon, m.lat
}

// Size returns the viewport size in virtual pixels.
func (m *Map) Size() (int, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.opts.Width, m.opts.Height
}

// Resize changes the virtual pixel size of the viewport.
func (m *Map) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	m.mu.Lock()
	m.opts.Width, m.opts.Height = w, h
	m.mu.Unlock()
}

func (m *Map) clampZoom(z float64) float64 {
	return math.Max(m.opts.MinZoom, math.Min(m.opts.MaxZoom, z))
}

func (m *Map) SetZoom(z float64) {
	m.mu.Lock()
	m.zoom = m.clampZoom(z)
	m.mu.Unlock()
}

// ZoomBy changes the zoom by delta levels around the centre.
func (m *Map) ZoomBy(delta float64) {
	m.mu.Lock()
	m.zoom = m.clampZoom(m.zoom + delta)
	m.mu.Unlock()
}

func (m *Map) SetCenter(lon, lat float64) {
	m.mu.Lock()
	m.lon, m.lat = wrapLon(lon), math.Max(-MaxLat, math.Min(MaxLat, lat))
	m.mu.Unlock()
}

// Pan moves the centre by a pixel offset; positive dy moves south.
func (m *Map) Pan(dx, dy float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	x, y := Project(m.lon, m.lat, m.zoom)
	lon, lat := Unproject(x+dx, y+dy, m.zoom)
	m.lon, m.lat = wrapLon(lon), math.Max(-MaxLat, math.Min(MaxLat, lat))
}

// FitBounds centres bb and picks the largest zoom that shows all of it.
func (m *Map) FitBounds(bb geom.BBox) {
	if !bb.Valid() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	x0, y0 := Project(bb.MinX, bb.MaxY, 0)
	x1, y1 := Project(bb.MaxX, bb.MinY, 0)
	dx, dy := math.Max(x1-x0, 1e-9), math.Max(y1-y0, 1e-9)
	z := math.Log2(math.Min(float64(m.opts.Width)/dx, float64(m.opts.Height)/dy))
	m.zoom = m.clampZoom(z)
	lon, lat := Unproject((x0+x1)/2, (y0+y1)/2, 0)
	m.lon, m.lat = lon, lat
}

// Bounds returns the lon/lat box currently in view.
func (m *Map) Bounds() geom.BBox {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.boundsLocked()
}

func (m *Map) boundsLocked() geom.BBox {
	cx, cy := Project(m.lon, m.lat, m.zoom)
	hw, hh := float64(m.opts.Width)/2, float64(m.opts.Height)/2
	minLon, maxLat := Unproject(cx-hw, cy-hh, m.zoom)
	maxLon, minLat := Unproject(cx+hw, cy+hh, m.zoom)
	return geom.BBox{MinX: minLon, MinY: minLat, MaxX: maxLon, MaxY: maxLat}
}

// ToScreen maps lon/lat to viewport pixels; (0,0) is the top-left corner.
func (m *Map) ToScreen(lon, lat float64) (float64, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.toScreenLocked(lon, lat)
}

func (m *Map) toScreenLocked(lon, lat float64) (float64, float64) {
	cx, cy := Project(m.lon, m.lat, m.zoom)
	x, y := Project(lon, lat, m.zoom)
	return x - cx + float64(m.opts.Width)/2, y - cy + float64(m.opts.Height)/2
}

// FromScreen is the inverse of ToScreen.
func (m *Map) FromScreen(px, py float64) (float64, float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cx, cy := Project(m.lon, m.lat, m.zoom)
	return Unproject(cx+px-float64(m.opts.Width)/2, cy+py-float64(m.opts.Height)/2, m.zoom)
}

func (m *Map) descriptor(layerID string) (layers.Descriptor, error) {
	return m.table.Layer(layerID)
}

// SetFilter replaces a layer's filter; nil clears it.
func (m *Map) SetFilter(layerID string, expr filter.Expression) error {
	if _, err := m.descriptor(layerID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if expr == nil {
		delete(m.filters, layerID)
		return nil
	}
	m.filters[layerID] = expr
	return nil
}

// Filter returns the layer's filter, nil when none is set.
func (m *Map) Filter(layerID string) filter.Expression {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filters[layerID]
}

func (m *Map) SetLayoutProperty(layerID, name string, value any) error {
	if _, err := m.descriptor(layerID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	props, ok := m.layout[layerID]
	if !ok {
		props = map[string]any{}
		m.layout[layerID] = props
	}
	props[name] = value
	return nil
}

func (m *Map) LayoutProperty(layerID, name string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.layout[layerID][name]
}

// Drawn reports whether a layer is visible and applicable at the current
// zoom. Layers are visible until told otherwise.
func (m *Map) Drawn(layerID string) bool {
	d, err := m.descriptor(layerID)
	if err != nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drawnLocked(d)
}

func (m *Map) drawnLocked(d layers.Descriptor) bool {
	if v, _ := m.layout[d.ID][Visibility].(string); v == None {
		return false
	}
	return d.Applies(m.zoom)
}

func (m *Map) sourceLocked(d layers.Descriptor) *geom.Collection {
	if c, ok := m.sources[d.Source]; ok {
		return c
	}
	return m.sources[DefaultSource]
}

// QueryRenderedFeatures returns the features drawn for layerIDs in the
// current viewport, one record per feature per overlapping tile at
// floor(zoom). Hidden layers and layers outside their zoom range yield
// nothing; layer filters apply.
func (m *Map) QueryRenderedFeatures(layerIDs ...string) ([]features.Rendered, error) {
	descs := make([]layers.Descriptor, 0, len(layerIDs))
	for _, id := range layerIDs {
		d, err := m.descriptor(id)
		if err != nil {
			return nil, eris.Wrapf(err, "query %s", id)
		}
		descs = append(descs, d)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.loaded {
		return nil, ErrNotLoaded
	}
	view := m.boundsLocked()
	z := int(math.Floor(m.zoom))
	var out []features.Rendered
	for _, d := range descs {
		if !m.drawnLocked(d) {
			continue
		}
		src := m.sourceLocked(d)
		if src == nil {
			continue
		}
		expr := m.filters[d.ID]
		for _, f := range src.Features {
			if !f.BBox.Overlaps(view) || !filter.Eval(expr, f.Properties) {
				continue
			}
			clip := intersect(f.BBox, view)
			x0, x1 := LonToTile(clip.MinX, z), LonToTile(clip.MaxX, z)
			y0, y1 := LatToTile(clip.MaxY, z), LatToTile(clip.MinY, z)
			for tx := x0; tx <= x1; tx++ {
				for ty := y0; ty <= y1; ty++ {
					out = append(out, features.Rendered{ID: f.ID, Layer: d.ID, Properties: f.Properties})
				}
			}
		}
	}
	return out, nil
}

// FeaturesAt returns the features of layerIDs drawn under lon/lat, once
// each. Point and line features match within a few pixels.
func (m *Map) FeaturesAt(lon, lat float64, layerIDs ...string) ([]features.Rendered, error) {
	descs := make([]layers.Descriptor, 0, len(layerIDs))
	for _, id := range layerIDs {
		d, err := m.descriptor(id)
		if err != nil {
			return nil, eris.Wrapf(err, "features at %s", id)
		}
		descs = append(descs, d)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.loaded {
		return nil, ErrNotLoaded
	}
	tol := 3 * 360 / worldSize(m.zoom)
	var out []features.Rendered
	for _, d := range descs {
		if !m.drawnLocked(d) {
			continue
		}
		src := m.sourceLocked(d)
		if src == nil {
			continue
		}
		expr := m.filters[d.ID]
		for _, f := range src.Features {
			if f.Contains(lon, lat, tol) && filter.Eval(expr, f.Properties) {
				out = append(out, features.Rendered{ID: f.ID, Layer: d.ID, Properties: f.Properties})
			}
		}
	}
	return out, nil
}

// Tile returns the slippy tile under the map centre at floor(zoom), capped
// at maxZ.
func (m *Map) Tile(maxZ int) Tile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	z := min(int(math.Floor(m.zoom)), maxZ)
	return Tile{Z: z, X: LonToTile(m.lon, z), Y: LatToTile(m.lat, z)}
}

func intersect(a, b geom.BBox) geom.BBox {
	return geom.BBox{
		MinX: math.Max(a.MinX, b.MinX),
		MinY: math.Max(a.MinY, b.MinY),
		MaxX: math.Min(a.MaxX, b.MaxX),
		MaxY: math.Min(a.MaxY, b.MaxY),
	}
}

func wrapLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
