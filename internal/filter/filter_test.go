package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ejmap/internal/layers"
	"ejmap/internal/rangefilter"
)

func TestCompileByZoom(t *testing.T) {
	c := NewCompiler(layers.Default())
	rng := rangefilter.Selection{Low: 100, High: 400}

	low, err := c.Compile(layers.Respiratory, rng, 8)
	require.NoError(t, err)
	assert.True(t, low.Clear())
	assert.Equal(t, layers.TierLow, low.Tier)
	assert.Equal(t, "resp-highlights", low.LayerID)

	high, err := c.Compile(layers.Respiratory, rng, 9)
	require.NoError(t, err)
	assert.False(t, high.Clear())
	assert.Equal(t, layers.TierHigh, high.Tier)
	assert.Equal(t, Between("D_RESP_2", 100, 400), high.Expression)
}

func TestCompileSwapsInvertedRange(t *testing.T) {
	c := NewCompiler(layers.Default())
	res, err := c.Compile(layers.PM25, rangefilter.Selection{Low: 900, High: 10}, 12)
	require.NoError(t, err)
	assert.Equal(t, Between("D_PM25_2", 10, 900), res.Expression)
}

func TestCompileUnknownIndicator(t *testing.T) {
	c := NewCompiler(layers.Default())
	_, err := c.Compile("lead", rangefilter.Selection{}, 10)
	assert.True(t, errors.Is(err, layers.ErrLayerNotFound))
}

func TestVisible(t *testing.T) {
	tbl := layers.Default()
	d, err := Visible(tbl, layers.Ozone, 5)
	require.NoError(t, err)
	assert.Equal(t, "ozone-low", d.ID)
	d, err = Visible(tbl, layers.Ozone, 9.5)
	require.NoError(t, err)
	assert.Equal(t, "ozone-high", d.ID)
}

func TestExpressionString(t *testing.T) {
	e := Between("F", 1, 2)
	assert.JSONEq(t, `["all",[">=",["to-number",["get","F"]],1],["<=",["to-number",["get","F"]],2]]`, e.String())
	assert.Equal(t, "null", Expression(nil).String())
}

func TestEval(t *testing.T) {
	between := Between("v", 10, 20)
	tests := []struct {
		name  string
		expr  Expression
		props map[string]any
		want  bool
	}{
		{"nil matches all", nil, map[string]any{}, true},
		{"inside", between, map[string]any{"v": 15.0}, true},
		{"lower edge", between, map[string]any{"v": 10.0}, true},
		{"upper edge", between, map[string]any{"v": 20.0}, true},
		{"above", between, map[string]any{"v": 20.5}, false},
		{"numeric string", between, map[string]any{"v": "12"}, true},
		{"missing coerces to zero", between, map[string]any{}, false},
		{"any", Expression{"any", []any{"==", Get("k"), "a"}, []any{"==", Get("k"), "b"}}, map[string]any{"k": "b"}, true},
		{"not", Expression{"!", []any{"has", "k"}}, map[string]any{"k": 1.0}, false},
		{"in literal", Expression{"in", Get("k"), []any{"literal", []any{"x", "y"}}}, map[string]any{"k": "y"}, true},
		{"string is not number", Expression{"==", Get("k"), 1.0}, map[string]any{"k": "1"}, false},
		{"unknown op", Expression{"nope", 1.0}, map[string]any{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eval(tt.expr, tt.props))
		})
	}
}
