package filter

import (
	"ejmap/internal/layers"
	"ejmap/internal/rangefilter"
)

// Result is a compiled filter and the layer it targets. A nil Expression
// means the layer's filter must be cleared.
type Result struct {
	LayerID    string
	Tier       layers.Tier
	Expression Expression
}

// Clear reports whether the result removes the filter.
func (r Result) Clear() bool { return r.Expression == nil }

// Compiler turns a committed range into a renderer filter.
type Compiler struct {
	Table *layers.Table
}

func NewCompiler(t *layers.Table) Compiler { return Compiler{Table: t} }

// Compile builds the highlight filter for indicator at zoom. Below
// layers.HighZoom the filter is cleared rather than narrowed.
func (c Compiler) Compile(indicator string, rng rangefilter.Selection, zoom float64) (Result, error) {
	target, err := c.Table.Highlight(indicator)
	if err != nil {
		return Result{}, err
	}
	tier := layers.TierFor(zoom)
	res := Result{LayerID: target.ID, Tier: tier}
	if tier == layers.TierLow {
		return res, nil
	}
	if rng.Low > rng.High {
		rng.Low, rng.High = rng.High, rng.Low
	}
	res.Expression = Between(target.Field, rng.Low, rng.High)
	return res, nil
}

// Visible returns the fill layer of indicator drawn at zoom.
func Visible(t *layers.Table, indicator string, zoom float64) (layers.Descriptor, error) {
	p, err := t.Pair(indicator)
	if err != nil {
		return layers.Descriptor{}, err
	}
	return p.At(zoom), nil
}
