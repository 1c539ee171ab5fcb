package features

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rf(id string, props map[string]any) Rendered {
	return Rendered{ID: id, Layer: "test", Properties: props}
}

func TestIndexDeduplicates(t *testing.T) {
	in := []Rendered{
		rf("1", map[string]any{"POP10": 100.0}),
		rf("1", map[string]any{"POP10": 100.0}),
		rf("2", map[string]any{"POP10": 50.0}),
		rf("3", map[string]any{"OTHER": 7.0}),
	}
	ix := Index(in, "POP10")
	assert.Equal(t, 2, ix.Len())
	assert.Equal(t, []string{"1", "2"}, ix.Keys())
	assert.Equal(t, 150.0, ix.Sum())
	assert.Equal(t, "POP10", ix.Field())

	again := Index(in, "POP10")
	assert.Equal(t, ix.Keys(), again.Keys())
	assert.Equal(t, ix.Values(), again.Values())
}

func TestIndexLastWriteWins(t *testing.T) {
	ix := Index([]Rendered{
		rf("a", map[string]any{"v": 1.0}),
		rf("b", map[string]any{"v": 2.0}),
		rf("a", map[string]any{"v": 3.0}),
	}, "v")
	assert.Equal(t, []string{"a", "b"}, ix.Keys())
	v, ok := ix.Value("a")
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
	assert.Equal(t, []float64{3, 2}, ix.Values())
}

func TestIndexNeverExceedsDistinct(t *testing.T) {
	var in []Rendered
	ids := []string{"a", "b", "a", "c", "b", "a"}
	for i, id := range ids {
		in = append(in, rf(id, map[string]any{"v": float64(i)}))
	}
	ix := Index(in, "v")
	assert.LessOrEqual(t, ix.Len(), 3)
}

func TestNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float", 1.5, 1.5, true},
		{"int", 3, 3, true},
		{"int64", int64(4), 4, true},
		{"json number", json.Number("12.5"), 12.5, true},
		{"numeric string", " 42 ", 42, true},
		{"empty string", "", 0, false},
		{"word", "n/a", 0, false},
		{"nil", nil, 0, false},
		{"nan", math.NaN(), 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Number(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRenderedValueWithoutProperties(t *testing.T) {
	_, ok := Rendered{ID: "x"}.Value("POP10")
	assert.False(t, ok)
}
