package nav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildMarksActiveItem(t *testing.T) {
	items := Build("/about")
	require.Len(t, items, len(Main))
	for _, it := range items {
		require.Equal(t, it.Href == "/about", it.Active, it.Href)
	}

	home := Build("")
	require.True(t, home[0].Active)
	require.False(t, home[1].Active)

	require.False(t, Build("/aboutus")[1].Active, "prefix must stop at a segment boundary")
}

func TestBreadcrumbsForProduct(t *testing.T) {
	crumbs := Breadcrumbs("/products/acme-erp")
	require.Len(t, crumbs, 3)
	require.Equal(t, Crumb{Href: "/", LabelKey: "nav.home"}, crumbs[0])
	require.Equal(t, "", crumbs[1].Href, "products has no index page")
	require.Equal(t, "nav.products", crumbs[1].LabelKey)
	require.Equal(t, Crumb{Href: "/products/acme-erp", Label: "Acme erp", Active: true}, crumbs[2])

	named := WithLeafLabel(crumbs, "Acme ERP")
	require.Equal(t, "Acme ERP", named[2].Label)
	require.Equal(t, "Acme erp", crumbs[2].Label, "input is not modified")
}

func TestBreadcrumbsTopLevel(t *testing.T) {
	crumbs := Breadcrumbs("/about")
	require.Len(t, crumbs, 2)
	require.Equal(t, "nav.about", crumbs[1].LabelKey)
	require.True(t, crumbs[1].Active)

	require.Len(t, Breadcrumbs("/"), 1)
	require.True(t, Breadcrumbs("/")[0].Active)
}
