// Package jsonx provides helpers for working with untyped JSON documents.
package jsonx

// CloneMap returns a deep copy of a JSON-shaped map. Nested maps and
// slices are copied recursively; scalar values are copied by value.
// Values outside the JSON type set are carried over by reference and
// will be rejected later by the serialization check.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	copied := make(map[string]any, len(m))
	for k, v := range m {
		copied[k] = cloneValue(v)
	}
	return copied
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneMap(val)
	case []any:
		copied := make([]any, len(val))
		for i, item := range val {
			copied[i] = cloneValue(item)
		}
		return copied
	default:
		return val
	}
}
