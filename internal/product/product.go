package product

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Product is a sanitized product record. Every list is non-nil and every
// image URL is absolute, so rendering code never re-checks shapes.
type Product struct {
	ID           string
	Name         string
	Description  string
	WhyChoose    string
	WhoNeeds     string
	Images       []string
	Gallery      []string
	Benefits     []Benefit
	Testimonials []Testimonial
	Plans        []Plan
	ProductLink  string
}

// Benefit is a single benefit card.
type Benefit struct {
	Title       string
	Description string
}

// Testimonial is a customer quote.
type Testimonial struct {
	Description string
	ClientName  string
	CompanyName string
}

// Plan is a pricing plan. Price keeps the API's textual form because the
// upstream sends either a number or a string.
type Plan struct {
	Name     string
	Price    string
	Features string
}

// Sanitize normalises a decoded product payload. Fields of unexpected shape
// degrade to their zero value or an empty list; fallbackID is used when the
// payload carries no identifier.
func Sanitize(raw map[string]any, fallbackID, base string) Product {
	p := Product{
		ID:           firstNonEmpty(stringField(raw, "id"), stringField(raw, "_id"), strings.TrimSpace(fallbackID)),
		Name:         stringField(raw, "productName"),
		Description:  stringField(raw, "description"),
		WhyChoose:    stringField(raw, "why_choose_des"),
		WhoNeeds:     stringField(raw, "who_need_des"),
		Images:       ResolveImages(raw["imageUrl"], base),
		Gallery:      ResolveImages(raw["gallery"], base),
		Benefits:     []Benefit{},
		Testimonials: []Testimonial{},
		Plans:        []Plan{},
		ProductLink:  stringField(raw, "productLink"),
	}

	for _, item := range objectList(raw, "benefits") {
		p.Benefits = append(p.Benefits, Benefit{
			Title:       stringField(item, "title"),
			Description: stringField(item, "description"),
		})
	}
	for _, item := range objectList(raw, "customerTestimonials") {
		p.Testimonials = append(p.Testimonials, Testimonial{
			Description: stringField(item, "description"),
			ClientName:  stringField(item, "clientName"),
			CompanyName: stringField(item, "companyName"),
		})
	}
	for _, item := range objectList(raw, "plans") {
		p.Plans = append(p.Plans, Plan{
			Name:     stringField(item, "name"),
			Price:    stringField(item, "price"),
			Features: stringField(item, "features"),
		})
	}
	return p
}

// stringField reads key as text. Numbers are rendered in their JSON form;
// any other type yields "".
func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return numberText(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// numberText keeps the JSON spelling of n unless it uses an exponent, which
// is rewritten in plain decimal form.
func numberText(n json.Number) string {
	text := n.String()
	if !strings.ContainsAny(text, "eE") {
		return text
	}
	f, err := n.Float64()
	if err != nil {
		return text
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// objectList returns the object elements of the list stored at key, skipping
// anything that is not an object.
func objectList(m map[string]any, key string) []map[string]any {
	if m == nil {
		return nil
	}
	items, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
