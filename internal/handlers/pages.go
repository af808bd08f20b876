package handlers

import (
	"html/template"

	"acesoftware.in/marketing-web/internal/nav"
)

// PageData is a generic view model for simple pages using the shared layout.
type PageData struct {
	Title     string
	Lang      string
	SiteName  string
	SEO       SEOData
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb

	// Optional per-page view model payloads
	Content any
	Product any
}

// SEOData carries head metadata for the shared layout.
type SEOData struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	JSONLD      []template.JS
}

// OpenGraph mirrors the og:* meta tags.
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
}

// Twitter mirrors the twitter:* meta tags.
type Twitter struct {
	Card  string
	Image string
}

// AddJSONLD appends a pre-encoded JSON-LD document. Empty payloads are ignored.
func (s *SEOData) AddJSONLD(doc string) {
	if doc == "" {
		return
	}
	s.JSONLD = append(s.JSONLD, template.JS(doc))
}

// FillDefaults completes OpenGraph and Twitter values from the primary fields.
func (s *SEOData) FillDefaults(siteName string) {
	if s.OG.Title == "" {
		s.OG.Title = s.Title
	}
	if s.OG.Description == "" {
		s.OG.Description = s.Description
	}
	if s.OG.URL == "" {
		s.OG.URL = s.Canonical
	}
	if s.OG.Type == "" {
		s.OG.Type = "website"
	}
	if s.OG.SiteName == "" {
		s.OG.SiteName = siteName
	}
	if s.Twitter.Card == "" {
		s.Twitter.Card = "summary_large_image"
	}
	if s.Twitter.Image == "" {
		s.Twitter.Image = s.OG.Image
	}
	if s.Robots == "" {
		s.Robots = "index,follow"
	}
}
