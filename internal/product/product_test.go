package product

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	raw, err := decodeRecord([]byte(body))
	require.NoError(t, err)
	return raw
}

func TestSanitizeFullRecord(t *testing.T) {
	t.Parallel()

	raw := decode(t, `{
		"_id": "64ab",
		"productName": " Acme ERP ",
		"description": "Fast. Simple.",
		"why_choose_des": "Because.",
		"who_need_des": "Factories. Foundries.",
		"imageUrl": ["hero.png", "alt.png"],
		"gallery": "g1.png",
		"benefits": [{"title": "Speed", "description": "Quick"}],
		"customerTestimonials": [{"description": "Great", "clientName": "Ravi", "companyName": "Infant Engineers"}],
		"plans": [{"name": "Pro", "price": 999, "features": "Fast.Reliable."}, {"name": "Lite", "price": "499.50"}],
		"productLink": "https://erp.example.com"
	}`)

	p := Sanitize(raw, "fallback", "https://api.example.com")
	require.Equal(t, "64ab", p.ID)
	require.Equal(t, "Acme ERP", p.Name)
	require.Equal(t, "Fast. Simple.", p.Description)
	require.Equal(t, []string{"https://api.example.com/hero.png", "https://api.example.com/alt.png"}, p.Images)
	require.Equal(t, []string{"https://api.example.com/g1.png"}, p.Gallery)
	require.Equal(t, []Benefit{{Title: "Speed", Description: "Quick"}}, p.Benefits)
	require.Equal(t, []Testimonial{{Description: "Great", ClientName: "Ravi", CompanyName: "Infant Engineers"}}, p.Testimonials)
	require.Equal(t, []Plan{
		{Name: "Pro", Price: "999", Features: "Fast.Reliable."},
		{Name: "Lite", Price: "499.50"},
	}, p.Plans)
	require.Equal(t, "https://erp.example.com", p.ProductLink)
}

func TestSanitizeDefaultsMissingAndMalformedFields(t *testing.T) {
	t.Parallel()

	raw := decode(t, `{
		"productName": 12,
		"imageUrl": {"path": "x.png"},
		"gallery": null,
		"benefits": "none",
		"customerTestimonials": [null, 3, {"clientName": "Only name"}],
		"plans": {}
	}`)

	p := Sanitize(raw, "42", "https://api.example.com")
	require.Equal(t, "42", p.ID)
	require.Equal(t, "12", p.Name)
	require.NotNil(t, p.Images)
	require.Empty(t, p.Images)
	require.NotNil(t, p.Gallery)
	require.Empty(t, p.Gallery)
	require.NotNil(t, p.Benefits)
	require.Empty(t, p.Benefits)
	require.Equal(t, []Testimonial{{ClientName: "Only name"}}, p.Testimonials)
	require.NotNil(t, p.Plans)
	require.Empty(t, p.Plans)
	require.Empty(t, p.ProductLink)
}

func TestSanitizeNilMap(t *testing.T) {
	t.Parallel()

	p := Sanitize(nil, "7", "https://x")
	require.Equal(t, "7", p.ID)
	require.NotNil(t, p.Benefits)
	require.NotNil(t, p.Testimonials)
	require.NotNil(t, p.Plans)
	require.NotNil(t, p.Images)
	require.NotNil(t, p.Gallery)
}

func TestStringFieldNumbers(t *testing.T) {
	t.Parallel()

	m := map[string]any{
		"num":   json.Number("1200"),
		"float": 12.5,
		"int":   3,
		"bool":  true,
	}
	require.Equal(t, "1200", stringField(m, "num"))
	require.Equal(t, "12.5", stringField(m, "float"))
	require.Equal(t, "3", stringField(m, "int"))
	require.Equal(t, "", stringField(m, "bool"))
	require.Equal(t, "", stringField(m, "missing"))
}

func TestStringFieldExponentNumbers(t *testing.T) {
	t.Parallel()

	raw := decode(t, `{"plans": [{"name": "Pro", "price": 1e3}, {"name": "Max", "price": 1.25E5}, {"name": "Odd", "price": 2.5e-1}]}`)
	p := Sanitize(raw, "1", "https://api.example.com")
	require.Len(t, p.Plans, 3)
	require.Equal(t, "1000", p.Plans[0].Price)
	require.Equal(t, "125000", p.Plans[1].Price)
	require.Equal(t, "0.25", p.Plans[2].Price)
}
