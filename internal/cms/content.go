package cms

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a content page cannot be located.
var ErrNotFound = errors.New("cms: not found")

// ContentPage represents a localized static page sourced from local markdown.
type ContentPage struct {
	Kind      string
	Slug      string
	Lang      string
	Title     string
	Summary   string
	Body      template.HTML
	UpdatedAt time.Time
	Banner    *ContentBanner
	SEO       ContentSEO
}

// ContentSEO holds optional metadata overrides for static pages.
type ContentSEO struct {
	Title       string
	Description string
	OGImage     string
}

// ContentBanner models an optional call-to-action banner displayed above the body.
type ContentBanner struct {
	Variant  string
	Title    string
	Message  string
	LinkText string
	LinkURL  string
}

type contentFrontMatter struct {
	Title     string                    `yaml:"title"`
	Summary   string                    `yaml:"summary"`
	Lang      string                    `yaml:"lang"`
	UpdatedAt string                    `yaml:"updated_at"`
	SEO       contentFrontMatterSEO     `yaml:"seo"`
	Banner    *contentFrontMatterBanner `yaml:"banner"`
}

type contentFrontMatterSEO struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	OGImage     string `yaml:"og_image"`
}

type contentFrontMatterBanner struct {
	Variant  string `yaml:"variant"`
	Title    string `yaml:"title"`
	Message  string `yaml:"message"`
	LinkText string `yaml:"link_text"`
	LinkURL  string `yaml:"link_url"`
}

const (
	defaultContentDir  = "content"
	defaultContentLang = "en"
)

// Client reads markdown pages from a content directory laid out as
// <dir>/<kind>/<lang>/<slug>.md.
type Client struct {
	contentDir   string
	fallbackLang string
	markdown     goldmark.Markdown
	policy       *bluemonday.Policy

	mu    sync.RWMutex
	cache map[string]contentCacheEntry
	ttl   time.Duration
}

type contentCacheEntry struct {
	page    ContentPage
	expires time.Time
}

// NewClient constructs a Client reading from dir.
func NewClient(dir string) *Client {
	c := &Client{
		fallbackLang: defaultContentLang,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy: newContentHTMLPolicy(),
		cache:  map[string]contentCacheEntry{},
		ttl:    5 * time.Minute,
	}
	c.SetContentDir(dir)
	return c
}

// SetContentDir configures the directory for markdown pages.
func (c *Client) SetContentDir(dir string) {
	if c == nil {
		return
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = defaultContentDir
	}
	c.contentDir = dir
}

// ContentDir returns the configured directory.
func (c *Client) ContentDir() string {
	if c == nil || strings.TrimSpace(c.contentDir) == "" {
		return defaultContentDir
	}
	return c.contentDir
}

// SetFallbackLang sets the language tried when the requested one has no page.
func (c *Client) SetFallbackLang(lang string) {
	if lang = normalizeLang(lang); lang != "" {
		c.fallbackLang = lang
	}
}

// SetCacheDuration overrides the in-memory cache duration. Zero disables caching.
func (c *Client) SetCacheDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	c.mu.Lock()
	c.ttl = d
	c.cache = map[string]contentCacheEntry{}
	c.mu.Unlock()
}

// GetContentPage returns a localized page, falling back to the default language.
func (c *Client) GetContentPage(ctx context.Context, kind, slug, lang string) (ContentPage, error) {
	if err := ctx.Err(); err != nil {
		return ContentPage{}, err
	}
	kind = sanitizeSlug(kind)
	if kind == "" {
		kind = "pages"
	}
	slug = sanitizeSlug(slug)
	if slug == "" {
		return ContentPage{}, ErrNotFound
	}
	lang = normalizeLang(lang)

	cacheKey := strings.Join([]string{kind, lang, slug}, "|")
	if page, ok := c.cachedContent(cacheKey); ok {
		return page, nil
	}

	page, err := c.loadContentPage(kind, slug, lang)
	if err != nil {
		return ContentPage{}, err
	}
	c.storeContent(cacheKey, page)
	return cloneContentPage(page), nil
}

func (c *Client) loadContentPage(kind, slug, lang string) (ContentPage, error) {
	priority := []string{}
	if lang != "" {
		priority = append(priority, lang)
	}
	if lang != c.fallbackLang {
		priority = append(priority, c.fallbackLang)
	}
	for _, candidate := range priority {
		page, err := c.readContentMarkdown(kind, slug, candidate)
		if err == nil {
			return page, nil
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		// For other errors (parse issues), stop early.
		return ContentPage{}, err
	}
	return ContentPage{}, ErrNotFound
}

func (c *Client) readContentMarkdown(kind, slug, lang string) (ContentPage, error) {
	file := filepath.Join(c.ContentDir(), kind, lang, slug+".md")

	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ContentPage{}, ErrNotFound
		}
		return ContentPage{}, err
	}
	fm, body := splitFrontMatter(string(data))
	front := contentFrontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return ContentPage{}, fmt.Errorf("cms: parse front matter %s: %w", file, err)
		}
	}

	rendered, err := c.render(body)
	if err != nil {
		return ContentPage{}, fmt.Errorf("cms: render %s: %w", file, err)
	}

	page := ContentPage{
		Kind:    kind,
		Slug:    slug,
		Lang:    firstNonEmpty(strings.TrimSpace(front.Lang), lang),
		Title:   strings.TrimSpace(front.Title),
		Summary: strings.TrimSpace(front.Summary),
		Body:    rendered,
		SEO: ContentSEO{
			Title:       strings.TrimSpace(front.SEO.Title),
			Description: strings.TrimSpace(front.SEO.Description),
			OGImage:     strings.TrimSpace(front.SEO.OGImage),
		},
	}
	if front.Banner != nil {
		page.Banner = &ContentBanner{
			Variant:  strings.TrimSpace(front.Banner.Variant),
			Title:    strings.TrimSpace(front.Banner.Title),
			Message:  strings.TrimSpace(front.Banner.Message),
			LinkText: strings.TrimSpace(front.Banner.LinkText),
			LinkURL:  strings.TrimSpace(front.Banner.LinkURL),
		}
	}
	page.UpdatedAt = parseContentDate(front.UpdatedAt)
	if page.UpdatedAt.IsZero() {
		if info, statErr := os.Stat(file); statErr == nil {
			page.UpdatedAt = info.ModTime()
		}
	}
	if page.Title == "" {
		// fall back to slug prettified
		page.Title = prettifySlug(slug)
	}
	return page, nil
}

// render converts markdown to HTML and sanitises the result.
func (c *Client) render(body string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := c.markdown.Convert([]byte(body), &buf); err != nil {
		return "", err
	}
	return template.HTML(c.policy.SanitizeBytes(buf.Bytes())), nil
}

func newContentHTMLPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption", "section")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span", "section", "div")
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if len(lines) == 0 {
		return "", ""
	}
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseContentDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006/01/02",
		"2006-1-2",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return slug
	}
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = asciiUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

func sanitizeSlug(slug string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	slug = strings.Trim(slug, "/")
	if slug == "" {
		return ""
	}
	if strings.Contains(slug, "..") {
		return ""
	}
	if strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}

func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return sanitizeSlug(lang)
}

func (c *Client) cachedContent(key string) (ContentPage, bool) {
	now := time.Now()
	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if !ok || now.After(entry.expires) {
		return ContentPage{}, false
	}
	return cloneContentPage(entry.page), true
}

func (c *Client) storeContent(key string, page ContentPage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ttl <= 0 {
		return
	}
	c.cache[key] = contentCacheEntry{
		page:    cloneContentPage(page),
		expires: time.Now().Add(c.ttl),
	}
}

func cloneContentPage(src ContentPage) ContentPage {
	cp := src
	if src.Banner != nil {
		b := *src.Banner
		cp.Banner = &b
	}
	return cp
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func asciiUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
