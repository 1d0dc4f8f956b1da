package hyvee

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSearchURL(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "multi-word query",
			query: "short carrots",
			want:  "https://www.hy-vee.com/aisles-online/search?search=short+carrots",
		},
		{
			name:  "extra whitespace collapses",
			query: "  large   eggs ",
			want:  "https://www.hy-vee.com/aisles-online/search?search=large+eggs",
		},
		{
			name:  "single token",
			query: "bananas",
			want:  "https://www.hy-vee.com/aisles-online/search?search=bananas",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSearchURL(tt.query))
		})
	}
}

func TestParseAddToCartLabel(t *testing.T) {
	tests := []struct {
		name   string
		label  string
		want   string
		wantOK bool
	}{
		{name: "standard label", label: "Add to cart, Short Carrots", want: "Short Carrots", wantOK: true},
		{name: "name with commas", label: "Add to cart, Eggs, Large, 12 ct", want: "Eggs, Large, 12 ct", wantOK: true},
		{name: "wrong prefix", label: "Remove from cart, Short Carrots", wantOK: false},
		{name: "prefix only", label: "Add to cart, ", wantOK: false},
		{name: "empty", label: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAddToCartLabel(tt.label)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProductIDFromHref(t *testing.T) {
	tests := []struct {
		name   string
		href   string
		want   string
		wantOK bool
	}{
		{name: "relative product link", href: "/aisles-online/p/46176/short-carrots", want: "46176", wantOK: true},
		{name: "absolute product link", href: "https://www.hy-vee.com/aisles-online/p/10001/baby-carrots", want: "10001", wantOK: true},
		{name: "id with query string", href: "/aisles-online/p/46176?src=cart", want: "46176", wantOK: true},
		{name: "no slug after id", href: "/aisles-online/p/46176", want: "46176", wantOK: true},
		{name: "not a product link", href: "/aisles-online/cart", wantOK: false},
		{name: "empty id", href: "/aisles-online/p/", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ProductIDFromHref(tt.href)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProductURLRoundTrips(t *testing.T) {
	url := ProductURL("46176")
	assert.Equal(t, "https://www.hy-vee.com/aisles-online/p/46176", url)

	id, ok := ProductIDFromHref(url)
	assert.True(t, ok)
	assert.Equal(t, "46176", id)
}
