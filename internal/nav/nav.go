package nav

import (
	"path"
	"strings"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string // e.g. "/about"
	LabelKey string // i18n key, e.g. "nav.about"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
// An empty Href renders as plain text.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/", LabelKey: "nav.home"},
	{Path: "/about", LabelKey: "nav.about"},
	{Path: "/contact", LabelKey: "nav.contact"},
}

// sections are top-level path segments that have a label but no index page.
var sections = map[string]string{
	"products": "nav.products",
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	// match exact or prefix boundary: "/about" or "/about/..."
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds breadcrumb entries from the current path.
// Rules:
// - Always start with Home
// - Known top-level pages link with their nav label keys
// - Label-only sections (products) render without a link
// - Deeper segments use a prettified segment label
func Breadcrumbs(currentPath string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	clean := path.Clean(currentPath)
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return crumbs
	}

	top := "/" + parts[0]
	topCrumb := Crumb{Href: top, Label: titleFromSegment(parts[0]), Active: len(parts) == 1}
	for _, it := range Main {
		if it.Path == top {
			topCrumb.LabelKey = it.LabelKey
			break
		}
	}
	if key, ok := sections[parts[0]]; ok {
		topCrumb.Href = ""
		topCrumb.LabelKey = key
	}
	crumbs = append(crumbs, topCrumb)

	href := top
	for i := 1; i < len(parts); i++ {
		href = href + "/" + parts[i]
		crumbs = append(crumbs, Crumb{
			Href:   href,
			Label:  titleFromSegment(parts[i]),
			Active: i == len(parts)-1,
		})
	}
	return crumbs
}

// WithLeafLabel replaces the label of the last crumb, e.g. with a product
// name once it is known.
func WithLeafLabel(crumbs []Crumb, label string) []Crumb {
	if len(crumbs) < 2 || strings.TrimSpace(label) == "" {
		return crumbs
	}
	out := append([]Crumb(nil), crumbs...)
	last := &out[len(out)-1]
	last.LabelKey = ""
	last.Label = label
	return out
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	r[0] = toUpper(r[0])
	return string(r)
}

func toUpper(r rune) rune {
	// ASCII only is sufficient for slugs here
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
