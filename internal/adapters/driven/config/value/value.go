// Package value converts raw configuration values into typed ones.
//
// Each function takes the (value, found) pair returned by a store's Get, so
// stores can write GetInt as value.Int(s.Get(key)). Missing keys and values
// of the wrong type yield the zero value.
package value

// String returns v when it is a string.
func String(v any, ok bool) string {
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Int accepts any integer type, plus floats as decoded from JSON.
func Int(v any, ok bool) int {
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// Float accepts floats and integers.
func Float(v any, ok bool) float64 {
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// Bool returns v when it is a bool.
func Bool(v any, ok bool) bool {
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Strings accepts []string or a decoded []any, keeping only the strings.
func Strings(v any, ok bool) []string {
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, isString := item.(string); isString {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
