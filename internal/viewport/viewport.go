// Package viewport drives the aggregation and cross-filter loop in response
// to map lifecycle events. A Controller owns the renderer: front ends feed
// it events and render the View it publishes.
package viewport

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"ejmap/internal/aggregate"
	"ejmap/internal/features"
	"ejmap/internal/filter"
	"ejmap/internal/histogram"
	"ejmap/internal/layers"
	"ejmap/internal/metrics"
	"ejmap/internal/rangefilter"
	"ejmap/internal/render"
)

// ErrRendererUnavailable marks a renderer call attempted before load. It
// never leaves the controller.
var ErrRendererUnavailable = eris.New("viewport: renderer unavailable")

// Renderer is the map engine contract.
type Renderer interface {
	Loaded() bool
	Zoom() float64
	Center() (lon, lat float64)
	QueryRenderedFeatures(layerIDs ...string) ([]features.Rendered, error)
	SetFilter(layerID string, expr filter.Expression) error
	SetLayoutProperty(layerID, name string, value any) error
	SetStyle(ctx context.Context, id string) error
}

type Phase int

const (
	NotReady Phase = iota
	Idle
	Aggregating
)

func (p Phase) String() string {
	switch p {
	case NotReady:
		return "not-ready"
	case Idle:
		return "idle"
	case Aggregating:
		return "aggregating"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// TooltipMaxZoom caps the zoom of the tile shown in the tooltip.
const TooltipMaxZoom = 10

// Tooltip describes the hover overlay.
type Tooltip struct {
	FeatureID string      `json:"feature_id"`
	Layer     string      `json:"layer"`
	Label     string      `json:"label"`
	Value     float64     `json:"value"`
	Lon       float64     `json:"lon"`
	Lat       float64     `json:"lat"`
	Tile      render.Tile `json:"tile"`
	Pinned    bool        `json:"pinned"`
}

// View is everything a front end needs to draw one frame.
type View struct {
	Indicator string                `json:"indicator"`
	Label     string                `json:"label"`
	Field     string                `json:"field"`
	Domain    layers.Domain         `json:"domain"`
	Summary   *aggregate.Summary    `json:"summary"`
	Bins      []histogram.Bin       `json:"bins"`
	Range     rangefilter.Selection `json:"range"`
	Tooltip   *Tooltip              `json:"tooltip,omitempty"`
	Phase     Phase                 `json:"phase"`
	Zoom      float64               `json:"zoom"`
	Hidden    bool                  `json:"hidden"`
	Style     string                `json:"style"`
}

// Available reports whether the viewport was zoomed in enough to summarise.
func (v View) Available() bool { return v.Summary != nil }

// Publisher receives every new View.
type Publisher func(View)

type Options struct {
	Table     *layers.Table
	Indicator string
	// Buckets picks the histogram bucket count for a domain. Defaults to
	// histogram.DefaultBuckets.
	Buckets func(layers.Domain) int
	Publish Publisher
}

// Controller is not safe for concurrent use; drive it from one event loop.
type Controller struct {
	r        Renderer
	table    *layers.Table
	compiler filter.Compiler
	rng      *rangefilter.State
	sub      uuid.UUID
	buckets  func(layers.Domain) int
	publish  Publisher

	phase     Phase
	indicator string
	hidden    bool
	armed     bool
	style     string

	summary *aggregate.Summary
	bins    []histogram.Bin
	tooltip *Tooltip
	// lastTip is the value shown in the tooltip; nil when none is shown.
	lastTip *float64
}

func New(r Renderer, opts Options) (*Controller, error) {
	if opts.Table == nil {
		opts.Table = layers.Default()
	}
	if opts.Indicator == "" {
		opts.Indicator = opts.Table.Indicators()[0]
	}
	pair, err := opts.Table.Pair(opts.Indicator)
	if err != nil {
		return nil, eris.Wrap(err, "viewport: initial indicator")
	}
	if opts.Buckets == nil {
		opts.Buckets = histogram.DefaultBuckets
	}
	if opts.Publish == nil {
		opts.Publish = func(View) {}
	}
	c := &Controller{
		r:         r,
		table:     opts.Table,
		compiler:  filter.NewCompiler(opts.Table),
		rng:       rangefilter.New(pair.High.Domain),
		buckets:   opts.Buckets,
		publish:   opts.Publish,
		indicator: opts.Indicator,
	}
	c.sub = c.rng.Subscribe(c.onRange)
	return c, nil
}

// Close detaches the controller from its range state.
func (c *Controller) Close() { c.rng.Unsubscribe(c.sub) }

func (c *Controller) Phase() Phase { return c.phase }

func (c *Controller) Indicator() string { return c.indicator }

// Range exposes the slider state; commits on it drive the filter.
func (c *Controller) Range() *rangefilter.State { return c.rng }

func (c *Controller) Table() *layers.Table { return c.table }

// ready gates every renderer call.
func (c *Controller) ready() error {
	if c.phase == NotReady || !c.r.Loaded() {
		return ErrRendererUnavailable
	}
	return nil
}

func (c *Controller) skip(event string, err error) {
	reason := "renderer_unavailable"
	if errors.Is(err, layers.ErrLayerNotFound) {
		reason = "layer_not_found"
	}
	metrics.DeferredTotal.WithLabelValues(event, reason).Inc()
	zap.L().Debug("viewport event deferred", zap.String("event", event), zap.String("reason", reason), zap.Error(err))
}

// HandleLoad marks the renderer ready and brings it in line with the
// current indicator and range.
func (c *Controller) HandleLoad() {
	if !c.r.Loaded() {
		c.skip("load", ErrRendererUnavailable)
		return
	}
	c.phase = Idle
	c.applyVisibility()
	c.applyFilter("load")
	c.armed = !c.hidden && layers.TierFor(c.r.Zoom()) == layers.TierHigh
	zap.L().Info("map loaded", zap.String("style", c.style), zap.Float64("zoom", c.r.Zoom()))
	c.emit()
}

// HandleMoveEnd reacts to the end of a pan or zoom. Below layers.HighZoom
// the summary becomes unavailable and the highlight filter is cleared;
// otherwise aggregation waits for the next idle.
func (c *Controller) HandleMoveEnd() {
	if err := c.ready(); err != nil {
		c.skip("moveend", err)
		return
	}
	if c.hidden {
		return
	}
	if layers.TierFor(c.r.Zoom()) == layers.TierLow {
		c.phase = Idle
		c.armed = false
		c.summary = nil
		c.bins = nil
		c.applyFilter("moveend")
		c.emit()
		return
	}
	c.applyFilter("moveend")
	c.armed = true
}

// HandleIdle runs an armed aggregation once rendering has settled.
func (c *Controller) HandleIdle() {
	if !c.armed {
		return
	}
	if err := c.ready(); err != nil {
		c.skip("idle", err)
		return
	}
	c.armed = false
	if layers.TierFor(c.r.Zoom()) == layers.TierLow {
		return
	}
	c.phase = Aggregating
	err := c.aggregate()
	c.phase = Idle
	if err != nil {
		c.skip("idle", err)
		return
	}
	c.emit()
}

// Pending reports whether an aggregation waits for the next idle.
func (c *Controller) Pending() bool { return c.armed }

func (c *Controller) aggregate() error {
	start := time.Now()
	pop, err := c.table.Population()
	if err != nil {
		return err
	}
	pair, err := c.table.Pair(c.indicator)
	if err != nil {
		return err
	}
	popFeatures, err := c.r.QueryRenderedFeatures(pop.ID)
	if err != nil {
		return eris.Wrap(err, "query population")
	}
	indFeatures, err := c.r.QueryRenderedFeatures(pair.High.ID)
	if err != nil {
		return eris.Wrap(err, "query indicator")
	}
	s := aggregate.Aggregate(popFeatures, indFeatures, pop.Field, pair.High.Field)
	bins, err := histogram.Compute(s.SortedSample, pair.High.Domain, c.buckets(pair.High.Domain))
	if err != nil {
		// unreachable with a validated table
		zap.L().Error("histogram", zap.String("indicator", c.indicator), zap.Error(err))
		bins = nil
	}
	c.summary = &s
	c.bins = bins

	metrics.AggregationsTotal.Inc()
	metrics.RenderedFeatures.Observe(float64(len(popFeatures) + len(indFeatures)))
	metrics.Since(metrics.AggregationDurationMs, start)
	zap.L().Debug("viewport aggregated",
		zap.String("indicator", c.indicator),
		zap.Int("rendered", len(popFeatures)+len(indFeatures)),
		zap.Int("distinct", s.DistinctFeatureCount),
		zap.Float64("population", s.TotalPopulation),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// HandleZoomStart dismisses the tooltip.
func (c *Controller) HandleZoomStart() {
	if c.clearTooltip() {
		c.emit()
	}
}

// SelectIndicator switches the active indicator. The range resets to the
// new domain and is committed even if unchanged. The previous summary is
// dropped; the next idle aggregates the new indicator.
func (c *Controller) SelectIndicator(id string) error {
	pair, err := c.table.Pair(id)
	if err != nil {
		return err
	}
	c.indicator = id
	c.hidden = false
	c.summary = nil
	c.bins = nil
	c.clearTooltip()
	if c.ready() == nil {
		c.applyVisibility()
		c.armed = layers.TierFor(c.r.Zoom()) == layers.TierHigh
	}
	// Reset emits, which applies the filter and publishes.
	c.rng.Reset(pair.High.Domain)
	return nil
}

// HideLayers hides every indicator layer. Move events are ignored until
// an indicator is selected again.
func (c *Controller) HideLayers() {
	c.hidden = true
	c.armed = false
	c.clearTooltip()
	if err := c.ready(); err != nil {
		c.skip("hide", err)
	} else {
		c.applyVisibility()
	}
	c.emit()
}

// ShowLayers undoes HideLayers for the current indicator.
func (c *Controller) ShowLayers() error { return c.SelectIndicator(c.indicator) }

func (c *Controller) Hidden() bool { return c.hidden }

// SetStyle swaps the renderer's style. Asking for the style already
// applied is a no-op. The controller stays NotReady until HandleLoad. A
// failed swap leaves the previous style in use.
func (c *Controller) SetStyle(ctx context.Context, id string) error {
	if id == c.style {
		return nil
	}
	prev := c.phase
	c.phase = NotReady
	c.armed = false
	c.clearTooltip()
	if err := c.r.SetStyle(ctx, id); err != nil {
		// the renderer keeps the old style when a load fails
		if c.r.Loaded() {
			c.phase = prev
		}
		c.emit()
		return eris.Wrapf(err, "viewport: set style %s", id)
	}
	c.summary = nil
	c.bins = nil
	c.style = id
	metrics.StyleLoadsTotal.Inc()
	c.emit()
	return nil
}

func (c *Controller) Style() string { return c.style }

// onRange runs for every committed range.
func (c *Controller) onRange(rangefilter.Selection) {
	if err := c.ready(); err != nil {
		c.skip("range", err)
		c.emit()
		return
	}
	c.applyFilter("range")
	c.emit()
}

func (c *Controller) applyVisibility() {
	ind := c.indicator
	if c.hidden {
		ind = ""
	}
	vis := c.table.Visibility(ind)
	for _, id := range layers.LayerIDs(vis) {
		v := render.None
		if vis[id] {
			v = render.Visible
		}
		if err := c.r.SetLayoutProperty(id, render.Visibility, v); err != nil {
			metrics.RendererErrorsTotal.WithLabelValues("set_layout_property").Inc()
			zap.L().Warn("set visibility", zap.String("layer", id), zap.Error(err))
		}
	}
}

// applyFilter compiles the committed range for the current zoom and
// pushes it to the highlight layer.
func (c *Controller) applyFilter(event string) {
	res, err := c.compiler.Compile(c.indicator, c.rng.Range(), c.r.Zoom())
	if err != nil {
		c.skip(event, err)
		return
	}
	if err := c.r.SetFilter(res.LayerID, res.Expression); err != nil {
		metrics.RendererErrorsTotal.WithLabelValues("set_filter").Inc()
		zap.L().Warn("set filter", zap.String("layer", res.LayerID), zap.Error(err))
		return
	}
	metrics.FiltersAppliedTotal.WithLabelValues(res.Tier.String()).Inc()
	zap.L().Debug("filter applied", zap.String("layer", res.LayerID), zap.Stringer("expr", res.Expression))
}

// HandleMouseMove updates the tooltip from the features under the pointer.
// It publishes only when the hovered value changes or the tooltip goes
// away.
func (c *Controller) HandleMouseMove(lon, lat float64, fs []features.Rendered) {
	c.hover(lon, lat, fs, false)
}

// HandleClick pins the tooltip to the feature under the pointer, publishing
// even when the value is unchanged.
func (c *Controller) HandleClick(lon, lat float64, fs []features.Rendered) {
	c.hover(lon, lat, fs, true)
}

// HandleMouseLeave dismisses the tooltip.
func (c *Controller) HandleMouseLeave() {
	if c.clearTooltip() {
		c.emit()
	}
}

func (c *Controller) hover(lon, lat float64, fs []features.Rendered, pin bool) {
	if c.ready() != nil || c.hidden || len(fs) == 0 {
		return
	}
	f := fs[0]
	d, ok := c.tooltipLayer(f.Layer)
	if !ok {
		return
	}
	v, ok := f.Value(d.Field)
	if !ok {
		if c.clearTooltip() {
			c.emit()
		}
		return
	}
	if c.tooltip != nil {
		c.tooltip.Lon, c.tooltip.Lat = lon, lat
	}
	if !pin && c.lastTip != nil && *c.lastTip == v {
		return
	}
	zoom := int(math.Min(math.Floor(c.r.Zoom()), TooltipMaxZoom))
	clon, clat := c.r.Center()
	c.tooltip = &Tooltip{
		FeatureID: f.ID,
		Layer:     d.ID,
		Label:     d.Label,
		Value:     v,
		Lon:       lon,
		Lat:       lat,
		Tile:      render.Tile{Z: zoom, X: render.LonToTile(clon, zoom), Y: render.LatToTile(clat, zoom)},
		Pinned:    pin,
	}
	c.lastTip = &v
	c.emit()
}

// tooltipLayer accepts any fill layer below layers.HighZoom and only high
// fill layers above it.
func (c *Controller) tooltipLayer(id string) (layers.Descriptor, bool) {
	d, err := c.table.Layer(id)
	if err != nil || d.Kind != layers.KindFill {
		return layers.Descriptor{}, false
	}
	if layers.TierFor(c.r.Zoom()) == layers.TierHigh && d.Tier != layers.TierHigh {
		return layers.Descriptor{}, false
	}
	return d, true
}

func (c *Controller) clearTooltip() bool {
	had := c.tooltip != nil
	c.tooltip = nil
	c.lastTip = nil
	return had
}

// View returns the current state.
func (c *Controller) View() View {
	v := View{
		Indicator: c.indicator,
		Range:     c.rng.Range(),
		Domain:    c.rng.Domain(),
		Summary:   c.summary,
		Bins:      c.bins,
		Phase:     c.phase,
		Hidden:    c.hidden,
		Style:     c.style,
	}
	if c.r.Loaded() {
		v.Zoom = c.r.Zoom()
	}
	if pair, err := c.table.Pair(c.indicator); err == nil {
		v.Label = pair.High.Label
		v.Field = pair.High.Field
	}
	if c.tooltip != nil {
		t := *c.tooltip
		v.Tooltip = &t
	}
	return v
}

func (c *Controller) emit() { c.publish(c.View()) }
