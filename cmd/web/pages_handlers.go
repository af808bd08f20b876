package main

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"acesoftware.in/marketing-web/internal/cms"
	handlersPkg "acesoftware.in/marketing-web/internal/handlers"
	mw "acesoftware.in/marketing-web/internal/middleware"
	"acesoftware.in/marketing-web/internal/nav"
	"acesoftware.in/marketing-web/internal/observability"
	"acesoftware.in/marketing-web/internal/seo"
)

// basePage fills the layout fields every page shares.
func (a *app) basePage(r *http.Request, title, description string) handlersPkg.PageData {
	lang := mw.Lang(r)
	brand := a.siteName(lang)

	vm := handlersPkg.PageData{
		Title:       title,
		Lang:        lang,
		SiteName:    brand,
		Path:        r.URL.Path,
		Nav:         nav.Build(r.URL.Path),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path),
		Analytics:   handlersPkg.AnalyticsFromConfig(a.cfg.Analytics),
	}
	vm.SEO.Title = title
	if title != brand {
		vm.SEO.Title = title + " | " + brand
	}
	vm.SEO.Description = description
	vm.SEO.Canonical = a.absoluteURL(r, r.URL.Path)
	vm.SEO.AddJSONLD(seo.JSON(seo.Organization(brand, a.absoluteURL(r, "/"), a.absoluteURL(r, "/assets/img/logo.svg"))))
	return vm
}

// finishPage completes SEO defaults once the page specific fields are set.
func (a *app) finishPage(r *http.Request, vm *handlersPkg.PageData) {
	if len(vm.Breadcrumbs) > 1 {
		items := make([]seo.BreadcrumbItem, 0, len(vm.Breadcrumbs))
		for _, c := range vm.Breadcrumbs {
			name := c.Label
			if c.LabelKey != "" {
				name = a.bundle.T(vm.Lang, c.LabelKey)
			}
			item := seo.BreadcrumbItem{Name: name}
			if c.Href != "" {
				item.Item = a.absoluteURL(r, c.Href)
			}
			items = append(items, item)
		}
		vm.SEO.AddJSONLD(seo.JSON(seo.BreadcrumbList(items)))
	}
	vm.SEO.FillDefaults(vm.SiteName)
}

func (a *app) siteName(lang string) string {
	if name := a.bundle.T(lang, "brand.name"); name != "brand.name" {
		return name
	}
	return a.cfg.Site.Name
}

// absoluteURL prefers the configured public site URL and falls back to the
// request's own scheme and host.
func (a *app) absoluteURL(r *http.Request, path string) string {
	if a.cfg.Site.URL != "" {
		return a.cfg.Site.URL + path
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		scheme = proto
	}
	return scheme + "://" + r.Host + path
}

// HomeHandler renders the landing page.
func (a *app) HomeHandler(w http.ResponseWriter, r *http.Request) {
	a.contentPage(w, r, "home", "home")
}

// AboutHandler renders the company profile.
func (a *app) AboutHandler(w http.ResponseWriter, r *http.Request) {
	a.contentPage(w, r, "about", "content")
}

// ContactHandler renders the contact page, the fallback target of every
// product call-to-action.
func (a *app) ContactHandler(w http.ResponseWriter, r *http.Request) {
	a.contentPage(w, r, "contact", "content")
}

func (a *app) contentPage(w http.ResponseWriter, r *http.Request, slug, page string) {
	lang := mw.Lang(r)
	content, err := a.content.GetContentPage(r.Context(), "pages", slug, lang)
	if err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			a.NotFoundHandler(w, r)
			return
		}
		observability.FromContext(r.Context()).Error("load content page",
			zap.String("slug", slug),
			zap.Error(err),
		)
		mw.WriteError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	title := strings.TrimSpace(content.Title)
	if slug == "home" {
		title = a.siteName(lang)
	}
	vm := a.basePage(r, title, firstNonEmpty(content.SEO.Description, content.Summary))
	if content.SEO.Title != "" {
		vm.SEO.Title = content.SEO.Title
	}
	vm.SEO.OG.Image = content.SEO.OGImage
	vm.Content = content
	a.finishPage(r, &vm)
	a.renderPage(w, r, http.StatusOK, page, vm)
}

// NotFoundHandler renders the shared 404 page.
func (a *app) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	vm := a.basePage(r, a.bundle.T(lang, "page.not_found.title"), a.bundle.T(lang, "page.not_found.body"))
	vm.SEO.Robots = "noindex"
	vm.Breadcrumbs = nil
	a.finishPage(r, &vm)
	a.renderPage(w, r, http.StatusNotFound, "not_found", vm)
}

// RoleHandler answers the role-labelled placeholder routes with
// {"message": role}. No authentication is enforced.
func (a *app) RoleHandler(role string) http.HandlerFunc {
	payload := map[string]string{"message": role}
	return func(w http.ResponseWriter, r *http.Request) {
		mw.WriteJSON(w, r, http.StatusOK, payload)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
