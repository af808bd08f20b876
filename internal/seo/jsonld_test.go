package seo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProductSchema(t *testing.T) {
	got := JSON(Product("Acme ERP", "Runs the back office.", "https://example.com/products/1",
		[]string{"https://api.example.com/hero.png"}, "Ace Software Solutions",
		[]Offer{{Name: "Pro", Price: "999"}, {Name: "Enterprise", Price: "Contact us"}}))

	require.JSONEq(t, `{
		"@context": "https://schema.org",
		"@type": "SoftwareApplication",
		"name": "Acme ERP",
		"applicationCategory": "BusinessApplication",
		"description": "Runs the back office.",
		"url": "https://example.com/products/1",
		"image": ["https://api.example.com/hero.png"],
		"brand": {"@type": "Brand", "name": "Ace Software Solutions"},
		"offers": [
			{"@type": "Offer", "name": "Pro", "price": "999", "priceCurrency": "INR"},
			{"@type": "Offer", "name": "Enterprise"}
		]
	}`, got)
}

func TestProductSchemaOmitsEmptyFields(t *testing.T) {
	got := JSON(Product("X", "", "", nil, "", nil))
	require.JSONEq(t, `{"@context":"https://schema.org","@type":"SoftwareApplication","name":"X","applicationCategory":"BusinessApplication"}`, got)
}

func TestBreadcrumbList(t *testing.T) {
	got := JSON(BreadcrumbList([]BreadcrumbItem{
		{Name: "Home", Item: "https://example.com/"},
		{Name: "Products"},
	}))
	require.JSONEq(t, `{
		"@context": "https://schema.org",
		"@type": "BreadcrumbList",
		"itemListElement": [
			{"@type": "ListItem", "position": 1, "name": "Home", "item": "https://example.com/"},
			{"@type": "ListItem", "position": 2, "name": "Products"}
		]
	}`, got)
}

func TestIsNumeric(t *testing.T) {
	for s, want := range map[string]bool{"999": true, "12.50": true, ".5": false, "5.": false, "1e3": false, "1.2.3": false} {
		require.Equal(t, want, isNumeric(s), s)
	}
}
