package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"acesoftware.in/marketing-web/internal/config"
)

func TestSEOFillDefaults(t *testing.T) {
	s := SEOData{Title: "Acme ERP", Description: "ERP", Canonical: "https://example.com/products/1"}
	s.OG.Image = "https://api.example.com/hero.png"
	s.FillDefaults("Ace Software Solutions")

	require.Equal(t, "Acme ERP", s.OG.Title)
	require.Equal(t, "ERP", s.OG.Description)
	require.Equal(t, "https://example.com/products/1", s.OG.URL)
	require.Equal(t, "website", s.OG.Type)
	require.Equal(t, "Ace Software Solutions", s.OG.SiteName)
	require.Equal(t, "summary_large_image", s.Twitter.Card)
	require.Equal(t, s.OG.Image, s.Twitter.Image)
	require.Equal(t, "index,follow", s.Robots)
}

func TestAddJSONLDSkipsEmpty(t *testing.T) {
	var s SEOData
	s.AddJSONLD("")
	s.AddJSONLD(`{"@type":"Organization"}`)
	require.Len(t, s.JSONLD, 1)
}

func TestAnalyticsFromConfig(t *testing.T) {
	a := AnalyticsFromConfig(config.AnalyticsConfig{GA4MeasurementID: "G-1"})
	require.True(t, a.Enabled())
	require.False(t, Analytics{}.Enabled())
}
