// Package features deduplicates rendered map features by identity.
//
// A renderer returns one record per tile a feature touches, so the same
// block group can appear several times in one query. Index collapses those
// copies before anything is summed or counted.
package features

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Rendered is one drawn geometry returned by a renderer query.
type Rendered struct {
	ID         string
	Layer      string
	Properties map[string]any
}

// Value returns the numeric value of field, coercing numeric strings.
func (f Rendered) Value(field string) (float64, bool) {
	if f.Properties == nil {
		return 0, false
	}
	v, ok := f.Properties[field]
	if !ok {
		return 0, false
	}
	return Number(v)
}

// Number coerces a property value to float64. nil, NaN, empty and
// non-numeric strings count as absent.
func Number(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Indexed maps feature identity to a field value.
type Indexed struct {
	field  string
	keys   []string
	values map[string]float64
}

// Index builds the identity -> value mapping for field over fs. Later copies
// of an identity overwrite earlier ones; enumeration order is the order in
// which identities were first seen.
func Index(fs []Rendered, field string) *Indexed {
	ix := &Indexed{field: field, values: make(map[string]float64, len(fs))}
	for _, f := range fs {
		v, ok := f.Value(field)
		if !ok {
			continue
		}
		if _, seen := ix.values[f.ID]; !seen {
			ix.keys = append(ix.keys, f.ID)
		}
		ix.values[f.ID] = v
	}
	return ix
}

func (ix *Indexed) Field() string { return ix.field }

func (ix *Indexed) Len() int { return len(ix.keys) }

// Keys returns identities in first-seen order.
func (ix *Indexed) Keys() []string {
	return append([]string(nil), ix.keys...)
}

// Value returns the value stored for id.
func (ix *Indexed) Value(id string) (float64, bool) {
	v, ok := ix.values[id]
	return v, ok
}

// Values returns values in key order.
func (ix *Indexed) Values() []float64 {
	out := make([]float64, 0, len(ix.keys))
	for _, k := range ix.keys {
		out = append(out, ix.values[k])
	}
	return out
}

// Sum adds every value once.
func (ix *Indexed) Sum() float64 {
	var s float64
	for _, k := range ix.keys {
		s += ix.values[k]
	}
	return s
}
