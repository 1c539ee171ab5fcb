package layers

import (
	"sort"

	"github.com/rotisserie/eris"
)

// HighZoom is the zoom at which the high tier becomes active. Aggregation
// gating, layer visibility and the filter target all use this value.
const HighZoom = 9.0

var (
	ErrLayerNotFound = eris.New("layers: layer not found")
	ErrInvalidTable  = eris.New("layers: invalid table")
)

type Kind int

const (
	KindFill Kind = iota
	KindHighlight
	KindPopulation
)

func (k Kind) String() string {
	switch k {
	case KindFill:
		return "fill"
	case KindHighlight:
		return "highlight"
	case KindPopulation:
		return "population"
	}
	return "unknown"
}

type Tier int

const (
	TierLow Tier = iota
	TierHigh
)

func (t Tier) String() string {
	if t == TierHigh {
		return "high"
	}
	return "low"
}

// TierFor returns the tier active at zoom.
func TierFor(zoom float64) Tier {
	if zoom >= HighZoom {
		return TierHigh
	}
	return TierLow
}

// Domain is the declared value range of an indicator.
type Domain struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

// Valid reports whether the domain is non-degenerate.
func (d Domain) Valid() bool { return d.Min < d.Max }

// Clamp limits v to the domain.
func (d Domain) Clamp(v float64) float64 {
	if v < d.Min {
		return d.Min
	}
	if v > d.Max {
		return d.Max
	}
	return v
}

// Descriptor is one static layer definition.
type Descriptor struct {
	ID          string  `json:"id" mapstructure:"id"`
	Indicator   string  `json:"indicator" mapstructure:"indicator"`
	Field       string  `json:"field" mapstructure:"field"`
	Label       string  `json:"label" mapstructure:"label"`
	Source      string  `json:"source" mapstructure:"source"`
	SourceLayer string  `json:"source_layer" mapstructure:"source_layer"`
	MinZoom     float64 `json:"min_zoom" mapstructure:"min_zoom"`
	MaxZoom     float64 `json:"max_zoom" mapstructure:"max_zoom"`
	Domain      Domain  `json:"domain" mapstructure:"domain"`
	Kind        Kind    `json:"kind" mapstructure:"kind"`
	Tier        Tier    `json:"tier" mapstructure:"tier"`
}

// Applies reports whether the layer draws at zoom.
func (d Descriptor) Applies(zoom float64) bool {
	return zoom >= d.MinZoom && zoom < d.MaxZoom
}

// Pair is the low/high fill layers of one indicator.
type Pair struct {
	Low  Descriptor
	High Descriptor
}

// At returns the member of the pair for zoom.
func (p Pair) At(zoom float64) Descriptor {
	if TierFor(zoom) == TierHigh {
		return p.High
	}
	return p.Low
}

// Table is an immutable, validated set of descriptors.
type Table struct {
	all        []Descriptor
	byID       map[string]Descriptor
	pairs      map[string]Pair
	highlights map[string]Descriptor
	indicators []string
	population *Descriptor
}

// NewTable validates descs and builds the lookup indexes. Indicators are
// enumerated in the order their first descriptor appears.
func NewTable(descs []Descriptor) (*Table, error) {
	t := &Table{
		all:        append([]Descriptor(nil), descs...),
		byID:       make(map[string]Descriptor, len(descs)),
		pairs:      make(map[string]Pair),
		highlights: make(map[string]Descriptor),
	}
	lows := map[string][]Descriptor{}
	highs := map[string][]Descriptor{}
	for _, d := range descs {
		if d.ID == "" {
			return nil, eris.Wrap(ErrInvalidTable, "descriptor without id")
		}
		if _, dup := t.byID[d.ID]; dup {
			return nil, eris.Wrapf(ErrInvalidTable, "duplicate layer id %q", d.ID)
		}
		if d.Field == "" {
			return nil, eris.Wrapf(ErrInvalidTable, "layer %q has no field", d.ID)
		}
		t.byID[d.ID] = d
		switch d.Kind {
		case KindPopulation:
			if t.population != nil {
				return nil, eris.Wrapf(ErrInvalidTable, "second population layer %q", d.ID)
			}
			p := d
			t.population = &p
			continue
		case KindHighlight:
			if _, dup := t.highlights[d.Indicator]; dup {
				return nil, eris.Wrapf(ErrInvalidTable, "second highlight layer for %q", d.Indicator)
			}
			t.highlights[d.Indicator] = d
		case KindFill:
			if !d.Domain.Valid() {
				return nil, eris.Wrapf(ErrInvalidTable, "layer %q has degenerate domain", d.ID)
			}
			if d.Tier == TierHigh {
				highs[d.Indicator] = append(highs[d.Indicator], d)
			} else {
				lows[d.Indicator] = append(lows[d.Indicator], d)
			}
		}
		if d.Indicator == "" {
			return nil, eris.Wrapf(ErrInvalidTable, "layer %q has no indicator", d.ID)
		}
		if !contains(t.indicators, d.Indicator) {
			t.indicators = append(t.indicators, d.Indicator)
		}
	}
	for _, ind := range t.indicators {
		lo, hi := lows[ind], highs[ind]
		if len(lo) != 1 || len(hi) != 1 {
			return nil, eris.Wrapf(ErrInvalidTable, "indicator %q needs one low and one high fill layer, got %d/%d", ind, len(lo), len(hi))
		}
		if lo[0].Field != hi[0].Field || lo[0].Domain != hi[0].Domain {
			return nil, eris.Wrapf(ErrInvalidTable, "indicator %q: low and high layers disagree on field or domain", ind)
		}
		t.pairs[ind] = Pair{Low: lo[0], High: hi[0]}
	}
	return t, nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// Indicators lists indicator ids in declaration order.
func (t *Table) Indicators() []string {
	return append([]string(nil), t.indicators...)
}

// All returns every descriptor in declaration order.
func (t *Table) All() []Descriptor {
	return append([]Descriptor(nil), t.all...)
}

// Layer looks up a descriptor by id.
func (t *Table) Layer(id string) (Descriptor, error) {
	d, ok := t.byID[id]
	if !ok {
		return Descriptor{}, eris.Wrapf(ErrLayerNotFound, "layer %q", id)
	}
	return d, nil
}

// Pair returns the fill layers of indicator.
func (t *Table) Pair(indicator string) (Pair, error) {
	p, ok := t.pairs[indicator]
	if !ok {
		return Pair{}, eris.Wrapf(ErrLayerNotFound, "indicator %q", indicator)
	}
	return p, nil
}

// Highlight returns the outline layer of indicator. Indicators without one
// fall back to their high fill layer.
func (t *Table) Highlight(indicator string) (Descriptor, error) {
	if d, ok := t.highlights[indicator]; ok {
		return d, nil
	}
	p, err := t.Pair(indicator)
	if err != nil {
		return Descriptor{}, err
	}
	return p.High, nil
}

// Population returns the layer carrying population counts.
func (t *Table) Population() (Descriptor, error) {
	if t.population == nil {
		return Descriptor{}, eris.Wrap(ErrLayerNotFound, "population layer")
	}
	return *t.population, nil
}

// Visibility computes the desired visibility of every indicator layer when
// indicator is active. An empty indicator hides them all. The population
// layer is left out: it stays queryable whatever indicator is shown.
func (t *Table) Visibility(indicator string) map[string]bool {
	out := make(map[string]bool, len(t.all))
	for _, d := range t.all {
		if d.Kind == KindPopulation {
			continue
		}
		out[d.ID] = indicator != "" && d.Indicator == indicator
	}
	return out
}

// LayerIDs returns ids sorted, for deterministic iteration.
func LayerIDs(vis map[string]bool) []string {
	ids := make([]string, 0, len(vis))
	for id := range vis {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
