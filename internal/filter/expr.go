package filter

import (
	"encoding/json"

	"ejmap/internal/features"
)

// Expression is a renderer filter in the nested-array mini-language, e.g.
// ["all", [">=", ["to-number", ["get", "F"]], 0], ["<=", ...]]. A nil
// Expression clears the filter.
type Expression []any

// Get builds ["get", field].
func Get(field string) []any { return []any{"get", field} }

// ToNumber builds ["to-number", e].
func ToNumber(e any) []any { return []any{"to-number", e} }

// Between builds the inclusive range predicate over a numeric property.
func Between(field string, low, high float64) Expression {
	return Expression{
		"all",
		[]any{">=", ToNumber(Get(field)), low},
		[]any{"<=", ToNumber(Get(field)), high},
	}
}

// String renders the expression as JSON.
func (e Expression) String() string {
	if e == nil {
		return "null"
	}
	b, err := json.Marshal([]any(e))
	if err != nil {
		return "<invalid>"
	}
	return string(b)
}

// Eval evaluates expr against a property map. A nil expression matches
// everything. Unknown operators evaluate to false.
func Eval(expr Expression, props map[string]any) bool {
	if expr == nil {
		return true
	}
	return truthy(eval([]any(expr), props))
}

func eval(node any, props map[string]any) any {
	arr, ok := node.([]any)
	if !ok {
		if e, isExpr := node.(Expression); isExpr {
			arr = []any(e)
		} else {
			return node
		}
	}
	if len(arr) == 0 {
		return nil
	}
	op, _ := arr[0].(string)
	args := arr[1:]
	switch op {
	case "all":
		for _, a := range args {
			if !truthy(eval(a, props)) {
				return false
			}
		}
		return true
	case "any":
		for _, a := range args {
			if truthy(eval(a, props)) {
				return true
			}
		}
		return false
	case "!":
		if len(args) != 1 {
			return false
		}
		return !truthy(eval(args[0], props))
	case "get":
		if len(args) != 1 {
			return nil
		}
		name, _ := args[0].(string)
		return props[name]
	case "has":
		if len(args) != 1 {
			return false
		}
		name, _ := args[0].(string)
		_, ok := props[name]
		return ok
	case "to-number":
		for _, a := range args {
			if n, ok := features.Number(eval(a, props)); ok {
				return n
			}
		}
		return 0.0
	case "literal":
		if len(args) != 1 {
			return nil
		}
		return args[0]
	case "in":
		if len(args) != 2 {
			return false
		}
		needle := eval(args[0], props)
		var hay []any
		switch h := eval(args[1], props).(type) {
		case []any:
			hay = h
		case []float64:
			for _, f := range h {
				hay = append(hay, f)
			}
		}
		for _, h := range hay {
			if equal(needle, h) {
				return true
			}
		}
		return false
	case "==", "!=", "<", "<=", ">", ">=":
		if len(args) != 2 {
			return false
		}
		return compare(op, eval(args[0], props), eval(args[1], props))
	}
	return false
}

func compare(op string, a, b any) bool {
	switch op {
	case "==":
		return equal(a, b)
	case "!=":
		return !equal(a, b)
	}
	x, okA := features.Number(a)
	y, okB := features.Number(b)
	if !okA || !okB {
		return false
	}
	switch op {
	case "<":
		return x < y
	case "<=":
		return x <= y
	case ">":
		return x > y
	case ">=":
		return x >= y
	}
	return false
}

func equal(a, b any) bool {
	if x, ok := numeric(a); ok {
		if y, ok := numeric(b); ok {
			return x == y
		}
		return false
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case nil:
		return b == nil
	}
	return false
}

// numeric accepts real numbers only; numeric strings stay strings for ==.
func numeric(v any) (float64, bool) {
	if _, isString := v.(string); isString {
		return 0, false
	}
	return features.Number(v)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if n, ok := features.Number(v); ok {
		return n != 0
	}
	return true
}
