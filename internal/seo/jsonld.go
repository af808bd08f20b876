package seo

import (
	"encoding/json"
	"strings"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Organization returns a minimal Organization schema.
func Organization(name, url, logoURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		entry := map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
		}
		if it.Item != "" {
			entry["item"] = it.Item
		}
		el = append(el, entry)
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Offer is one priced plan of a software product.
type Offer struct {
	Name  string
	Price string
}

// Product returns a SoftwareApplication payload. Offers without a numeric
// price are listed by name only.
func Product(name, description, url string, images []string, brand string, offers []Offer) map[string]any {
	m := map[string]any{
		"@context":            "https://schema.org",
		"@type":               "SoftwareApplication",
		"name":                name,
		"applicationCategory": "BusinessApplication",
	}
	if description != "" {
		m["description"] = description
	}
	if url != "" {
		m["url"] = url
	}
	if len(images) > 0 {
		m["image"] = images
	}
	if brand != "" {
		m["brand"] = map[string]any{"@type": "Brand", "name": brand}
	}
	if len(offers) > 0 {
		list := make([]map[string]any, 0, len(offers))
		for _, o := range offers {
			offer := map[string]any{"@type": "Offer", "name": o.Name}
			if p := strings.TrimSpace(o.Price); p != "" && isNumeric(p) {
				offer["price"] = p
				offer["priceCurrency"] = "INR"
			}
			list = append(list, offer)
		}
		m["offers"] = list
	}
	return m
}

func isNumeric(s string) bool {
	dot := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
		case c == '.' && !dot && i > 0:
			dot = true
		default:
			return false
		}
	}
	return s[len(s)-1] != '.'
}
