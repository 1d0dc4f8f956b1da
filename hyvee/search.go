package hyvee

import (
	"net/url"
	"strings"
)

const (
	baseURL       = "https://www.hy-vee.com"
	searchPath    = "/aisles-online/search"
	productPrefix = "/aisles-online/p/"

	addToCartLabelPrefix = "Add to cart, "
)

// BuildSearchURL builds the aisles-online search URL for a query. The query
// is whitespace-normalized; tokens are joined with "+" the way the site's
// own search box does it.
func BuildSearchURL(query string) string {
	return baseURL + searchPath + "?search=" + strings.Join(strings.Fields(query), "+")
}

// ProductURL builds the product detail URL for a product ID.
func ProductURL(productID string) string {
	return baseURL + productPrefix + url.PathEscape(productID)
}

// ParseAddToCartLabel extracts the product display name from an add-button
// aria-label. The site renders them as "Add to cart, <display name>".
func ParseAddToCartLabel(label string) (string, bool) {
	if !strings.HasPrefix(label, addToCartLabelPrefix) {
		return "", false
	}
	name := strings.TrimSpace(strings.TrimPrefix(label, addToCartLabelPrefix))
	if name == "" {
		return "", false
	}
	return name, true
}

// ProductIDFromHref extracts the product ID from a product link. Product
// hrefs look like /aisles-online/p/46176/short-carrots; the ID is the first
// path segment after /p/.
func ProductIDFromHref(href string) (string, bool) {
	idx := strings.Index(href, "/p/")
	if idx < 0 {
		return "", false
	}
	rest := strings.TrimPrefix(href[idx:], "/p/")
	if cut := strings.IndexAny(rest, "/?#"); cut >= 0 {
		rest = rest[:cut]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}
