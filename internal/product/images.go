package product

import "encoding/json"

// ResolveImages turns an image field of unknown shape into absolute URLs.
// A string yields one URL, a list of strings yields one URL per element in
// order, and anything else yields an empty (non-nil) list.
func ResolveImages(v any, base string) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return []string{}
		}
		return []string{joinBase(base, val)}
	case []string:
		out := make([]string, 0, len(val))
		for _, path := range val {
			if path != "" {
				out = append(out, joinBase(base, path))
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if path, ok := item.(string); ok && path != "" {
				out = append(out, joinBase(base, path))
			}
		}
		return out
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(val, &decoded); err != nil {
			return []string{}
		}
		return ResolveImages(decoded, base)
	default:
		return []string{}
	}
}

// Primary returns the first image of a resolved set, or "" when it is empty.
func Primary(images []string) string {
	if len(images) == 0 {
		return ""
	}
	return images[0]
}

func joinBase(base, path string) string {
	return base + "/" + path
}
