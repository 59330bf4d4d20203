// Package layering merges nested settings payloads ordered from strongest to
// weakest and answers path lookups against them.
package layering

// Merge composes payloads ordered from strongest to weakest, returning a new
// payload that keeps explicit values from stronger layers while filling any
// missing data from weaker ones. Nested maps merge key by key; any other value
// (including slices) is taken whole from the strongest layer that sets it.
// Inputs are never mutated.
func Merge(layers ...map[string]any) map[string]any {
	if len(layers) == 0 {
		return nil
	}
	merged := cloneMap(layers[len(layers)-1])
	for i := len(layers) - 2; i >= 0; i-- {
		merged = mergeMaps(layers[i], merged)
	}
	return merged
}

func mergeMaps(strong, weak map[string]any) map[string]any {
	if strong == nil {
		return cloneMap(weak)
	}
	result := make(map[string]any, len(strong)+len(weak))
	for key, value := range weak {
		result[key] = Clone(value)
	}
	for key, value := range strong {
		if value == nil {
			if _, exists := result[key]; exists {
				continue
			}
			result[key] = nil
			continue
		}
		strongMap, strongIsMap := value.(map[string]any)
		weakMap, weakIsMap := result[key].(map[string]any)
		if strongIsMap && weakIsMap {
			result[key] = mergeMaps(strongMap, weakMap)
			continue
		}
		result[key] = Clone(value)
	}
	return result
}

// Clone deep copies JSON-like values (maps, slices, scalars).
func Clone(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = Clone(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return value
	}
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = Clone(value)
	}
	return out
}

// Lookup walks payload along path and returns the value found there. A nil
// leaf counts as missing.
func Lookup(payload map[string]any, path ...string) (any, bool) {
	if len(path) == 0 || payload == nil {
		return nil, false
	}
	current := payload
	for i, segment := range path {
		value, ok := current[segment]
		if !ok || value == nil {
			return nil, false
		}
		if i == len(path)-1 {
			return value, true
		}
		next, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}
