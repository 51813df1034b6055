package provider

import (
	"math"
	"strings"
)

// lookup walks a dotted path through nested JSON objects.
func lookup(m map[string]any, path string) (any, bool) {
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// number reads a Yahoo numeric value at path. Yahoo wraps numbers as
// {"raw": 1.0, "fmt": "1.00"}; an empty object means not reported.
func number(m map[string]any, path string) (float64, bool) {
	v, ok := lookup(m, path)
	if !ok {
		return 0, false
	}
	if obj, ok := v.(map[string]any); ok {
		v, ok = obj["raw"]
		if !ok {
			return 0, false
		}
	}
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// text reads the first non-empty string among "|"-separated candidate paths.
func text(m map[string]any, paths string) string {
	for _, p := range strings.Split(paths, "|") {
		if v, ok := lookup(m, strings.TrimSpace(p)); ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// statements returns the list of statement objects at path, most recent first
// as Yahoo delivers them.
func statements(m map[string]any, path string) []map[string]any {
	v, ok := lookup(m, path)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, e := range arr {
		if obj, ok := e.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
