package layers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		zoom float64
		want Tier
	}{
		{0, TierLow},
		{8, TierLow},
		{8.99, TierLow},
		{9, TierHigh},
		{14.5, TierHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.zoom), "zoom %g", tt.zoom)
	}
}

func TestDefaultTable(t *testing.T) {
	tbl := Default()
	assert.Equal(t, []string{PM25, Respiratory, Ozone, FloodFactor}, tbl.Indicators())

	p, err := tbl.Pair(PM25)
	require.NoError(t, err)
	assert.Equal(t, "pm2.5-low", p.Low.ID)
	assert.Equal(t, "pm2.5-high", p.High.ID)
	assert.Equal(t, "D_PM25_2", p.High.Field)
	assert.Equal(t, Domain{Min: 0, Max: 12512}, p.High.Domain)

	assert.Equal(t, p.Low, p.At(8))
	assert.Equal(t, p.High, p.At(9))

	pop, err := tbl.Population()
	require.NoError(t, err)
	assert.Equal(t, PopulationField, pop.Field)

	hl, err := tbl.Highlight(Ozone)
	require.NoError(t, err)
	assert.Equal(t, KindHighlight, hl.Kind)
}

func TestLookupErrors(t *testing.T) {
	tbl := Default()

	_, err := tbl.Layer("nope")
	assert.True(t, errors.Is(err, ErrLayerNotFound))

	_, err = tbl.Pair("nope")
	assert.True(t, errors.Is(err, ErrLayerNotFound))

	empty, err := NewTable(nil)
	require.NoError(t, err)
	_, err = empty.Population()
	assert.True(t, errors.Is(err, ErrLayerNotFound))
}

func TestVisibility(t *testing.T) {
	tbl := Default()

	vis := tbl.Visibility(Respiratory)
	assert.True(t, vis["resp-low"])
	assert.True(t, vis["resp-high"])
	assert.True(t, vis["resp-highlights"])
	assert.False(t, vis["pm2.5-low"])
	assert.False(t, vis["ozone-high"])
	_, hasPop := vis["population"]
	assert.False(t, hasPop, "population layer is never toggled")

	for id, on := range tbl.Visibility("") {
		assert.False(t, on, "layer %s should be hidden", id)
	}
}

func TestLayerIDsSorted(t *testing.T) {
	ids := LayerIDs(map[string]bool{"b": true, "a": false, "c": true})
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestNewTableRejects(t *testing.T) {
	fill := func(id string, tier Tier) Descriptor {
		return Descriptor{ID: id, Indicator: "x", Field: "F", Domain: Domain{Min: 0, Max: 1}, Kind: KindFill, Tier: tier}
	}
	tests := []struct {
		name  string
		descs []Descriptor
	}{
		{"missing id", []Descriptor{{Field: "F"}}},
		{"duplicate id", []Descriptor{fill("a", TierLow), fill("a", TierHigh)}},
		{"missing field", []Descriptor{{ID: "a", Indicator: "x"}}},
		{"missing high", []Descriptor{fill("a", TierLow)}},
		{"degenerate domain", []Descriptor{
			{ID: "a", Indicator: "x", Field: "F", Domain: Domain{Min: 1, Max: 1}, Kind: KindFill},
		}},
		{"field mismatch", []Descriptor{
			fill("a", TierLow),
			{ID: "b", Indicator: "x", Field: "G", Domain: Domain{Min: 0, Max: 1}, Kind: KindFill, Tier: TierHigh},
		}},
		{"two population layers", []Descriptor{
			{ID: "p1", Field: "POP", Kind: KindPopulation},
			{ID: "p2", Field: "POP", Kind: KindPopulation},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.descs)
			assert.True(t, errors.Is(err, ErrInvalidTable), "got %v", err)
		})
	}
}

func TestDomainClamp(t *testing.T) {
	d := Domain{Min: 1, Max: 10}
	assert.Equal(t, 1.0, d.Clamp(-3))
	assert.Equal(t, 10.0, d.Clamp(11))
	assert.Equal(t, 5.5, d.Clamp(5.5))
	assert.False(t, Domain{Min: 2, Max: 2}.Valid())
}

func TestDescriptorApplies(t *testing.T) {
	d := Descriptor{MinZoom: 0, MaxZoom: HighZoom}
	assert.True(t, d.Applies(8.5))
	assert.False(t, d.Applies(9))
}
