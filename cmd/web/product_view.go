package main

import (
	"errors"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"acesoftware.in/marketing-web/internal/i18n"
	"acesoftware.in/marketing-web/internal/product"
	"acesoftware.in/marketing-web/internal/seo"
)

const (
	contactPath      = "/contact"
	placeholderImage = "/assets/img/placeholder.svg"
)

// ProductPageView backs the product page shell. Exactly one of Detail and
// Error is set once the product has been loaded server side; both are nil
// while the page is still Loading.
type ProductPageView struct {
	ID        string
	Status    string
	DetailURL string
	Detail    *ProductDetailView
	Error     *ProductErrorView
}

// ProductErrorView is rendered instead of every product section.
type ProductErrorView struct {
	Lang     string
	Message  string
	RetryURL string
}

// ProductDetailView is the populated product view. ID is the identifier the
// product was requested by, which may differ from the record's own id.
type ProductDetailView struct {
	Lang string
	ID   string

	Name        string
	HeadingName string
	Description []string
	WhyChoose   []string
	WhoNeeds    []string

	HeroImage string
	HeroAlt   string

	Gallery       []GallerySlide
	GalleryStream string

	Benefits     []product.Benefit
	Testimonials []product.Testimonial
	Plans        []PlanView

	TryNow  CTALink
	DemoURL string

	JSONLD template.JS
}

// GallerySlide is one gallery image, also the payload of a stream event.
type GallerySlide struct {
	Index int
	Total int
	Src   string
	Alt   string
}

// PlanView is a plan card.
type PlanView struct {
	Name     string
	Price    string
	Features []string
}

// CTALink is the primary call-to-action target.
type CTALink struct {
	Href     string
	External bool
}

func productPath(id string) string {
	return "/products/" + url.PathEscape(id)
}

// tryNowLink returns the external product link when it is an absolute
// http(s) URL and the internal contact page otherwise.
func tryNowLink(raw string) CTALink {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CTALink{Href: contactPath}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return CTALink{Href: contactPath}
	}
	return CTALink{Href: u.String(), External: true}
}

func buildGallerySlides(bundle *i18n.Bundle, lang string, p product.Product) []GallerySlide {
	name := p.Name
	if name == "" {
		name = bundle.T(lang, "product.generic")
	}
	slides := make([]GallerySlide, 0, len(p.Gallery))
	for i, src := range p.Gallery {
		slides = append(slides, GallerySlide{
			Index: i,
			Total: len(p.Gallery),
			Src:   src,
			Alt:   bundle.TF(lang, "product.gallery.alt", name, i+1),
		})
	}
	return slides
}

func buildProductDetail(bundle *i18n.Bundle, lang, routeID string, p product.Product, pageURL, brand string) *ProductDetailView {
	v := &ProductDetailView{
		Lang:         lang,
		ID:           routeID,
		Name:         p.Name,
		HeadingName:  p.Name,
		Description:  product.Segment(p.Description),
		WhyChoose:    product.Segment(p.WhyChoose),
		WhoNeeds:     product.Segment(p.WhoNeeds),
		HeroImage:    product.Primary(p.Images),
		HeroAlt:      p.Name,
		Gallery:      buildGallerySlides(bundle, lang, p),
		Benefits:     p.Benefits,
		Testimonials: p.Testimonials,
		Plans:        make([]PlanView, 0, len(p.Plans)),
		TryNow:       tryNowLink(p.ProductLink),
		DemoURL:      contactPath,
	}
	if v.Name == "" {
		v.Name = bundle.T(lang, "product.unnamed")
		v.HeadingName = bundle.T(lang, "product.this")
		v.HeroAlt = bundle.T(lang, "product.image_alt")
	}
	if v.HeroImage == "" {
		v.HeroImage = placeholderImage
	}
	if len(v.Gallery) > 1 {
		v.GalleryStream = productPath(routeID) + "/gallery/stream"
	}

	offers := make([]seo.Offer, 0, len(p.Plans))
	for _, plan := range p.Plans {
		v.Plans = append(v.Plans, PlanView{
			Name:     plan.Name,
			Price:    plan.Price,
			Features: product.Segment(plan.Features),
		})
		offers = append(offers, seo.Offer{Name: plan.Name, Price: plan.Price})
	}

	images := p.Images
	if len(images) == 0 {
		images = p.Gallery
	}
	v.JSONLD = template.JS(seo.JSON(seo.Product(v.Name, strings.TrimSpace(p.Description), pageURL, images, brand, offers)))
	return v
}

func buildProductError(bundle *i18n.Bundle, lang, id string, err error) *ProductErrorView {
	key := "product.fetch_failed"
	if errors.Is(err, product.ErrNotFound) {
		key = "product.not_found"
	}
	msg := bundle.T(lang, key)
	if msg == key {
		msg = product.UserMessage(err)
	}
	return &ProductErrorView{
		Lang:     lang,
		Message:  msg,
		RetryURL: productPath(id),
	}
}

func slideEventID(s GallerySlide) string {
	return strconv.Itoa(s.Index)
}
