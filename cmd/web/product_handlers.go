package main

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	handlersPkg "acesoftware.in/marketing-web/internal/handlers"
	mw "acesoftware.in/marketing-web/internal/middleware"
	"acesoftware.in/marketing-web/internal/nav"
	"acesoftware.in/marketing-web/internal/observability"
	"acesoftware.in/marketing-web/internal/product"
)

// productID returns the decoded {id} route parameter.
func productID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(id); err == nil {
			id = decoded
		}
	}
	return id
}

// ProductHandler renders the product page in its Loading state. The detail
// fragment is requested by htmx as soon as the shell loads.
func (a *app) ProductHandler(w http.ResponseWriter, r *http.Request) {
	id := productID(r)
	lang := mw.Lang(r)

	vm := a.basePage(r, a.bundle.T(lang, "product.page_title"), a.bundle.T(lang, "product.page_description"))
	vm.Product = ProductPageView{
		ID:        id,
		Status:    product.StatusLoading.String(),
		DetailURL: productPath(id) + "/detail",
	}
	a.finishPage(r, &vm)
	a.renderPage(w, r, http.StatusOK, "product", vm)
}

// ProductDetailFrag loads the product and renders either the populated view
// or the error message. htmx requests get the bare fragment; direct visits get
// the full page with the settled state.
func (a *app) ProductDetailFrag(w http.ResponseWriter, r *http.Request) {
	id := productID(r)
	lang := mw.Lang(r)
	logger := observability.FromContext(r.Context()).With(zap.String("product_id", id))

	view := product.NewView(a.products)
	defer view.Close()
	view.Navigate(r.Context(), id)
	st, err := view.Wait(r.Context())
	if err != nil {
		// The client went away or the request timed out; nothing to render.
		logger.Info("product detail abandoned", zap.Error(err))
		return
	}

	pageURL := a.absoluteURL(r, productPath(id))
	var (
		detail  *ProductDetailView
		failure *ProductErrorView
	)
	switch st.Status {
	case product.StatusReady:
		detail = buildProductDetail(a.bundle, lang, id, st.Product, pageURL, a.siteName(lang))
	default:
		failure = buildProductError(a.bundle, lang, id, st.Err)
	}

	if mw.IsHTMX(r.Context()) {
		// htmx only swaps 2xx responses, so the error fragment is a 200 too.
		if detail != nil {
			a.renderTemplate(w, r, http.StatusOK, "frag_product_detail", detail)
			return
		}
		a.renderTemplate(w, r, http.StatusOK, "frag_product_error", failure)
		return
	}

	status := http.StatusOK
	vm := a.basePage(r, a.bundle.T(lang, "product.page_title"), a.bundle.T(lang, "product.page_description"))
	vm.Path = productPath(id)
	vm.Breadcrumbs = nav.Breadcrumbs(vm.Path)
	vm.SEO.Canonical = pageURL
	pv := ProductPageView{ID: id, DetailURL: productPath(id) + "/detail", Status: st.Status.String()}
	if detail != nil {
		pv.Detail = detail
		a.applyProductSEO(&vm, detail, st.Product)
	} else {
		pv.Error = failure
		vm.SEO.Robots = "noindex"
		status = http.StatusBadGateway
		if errors.Is(st.Err, product.ErrNotFound) {
			status = http.StatusNotFound
		}
	}
	vm.Product = pv
	a.finishPage(r, &vm)
	a.renderPage(w, r, status, "product", vm)
}

func (a *app) applyProductSEO(vm *handlersPkg.PageData, detail *ProductDetailView, p product.Product) {
	vm.Title = detail.Name
	vm.SEO.Title = detail.Name + " | " + vm.SiteName
	if len(detail.Description) > 0 {
		vm.SEO.Description = strings.Join(detail.Description, ". ") + "."
	}
	if detail.HeroImage != placeholderImage {
		vm.SEO.OG.Image = detail.HeroImage
	}
	vm.SEO.OG.Type = "product"
	vm.Breadcrumbs = nav.WithLeafLabel(vm.Breadcrumbs, p.Name)
}
