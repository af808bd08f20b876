package product

import "strings"

// Segment splits free text on '.' and returns the trimmed, non-empty
// fragments in order. Punctuation is not re-added.
func Segment(text string) []string {
	parts := strings.Split(text, ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SegmentPtr is Segment for an optional field; nil yields an empty list.
func SegmentPtr(text *string) []string {
	if text == nil {
		return []string{}
	}
	return Segment(*text)
}
