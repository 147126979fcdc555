package crawler

import (
	"context"
	"strings"

	"sjsage522/brochureworker/internal/page"
)

// Browser loads pages. Implementations own a single session and are not
// safe for concurrent use.
type Browser interface {
	// Navigate loads url and returns the rendered page
	Navigate(ctx context.Context, url string) (page.Page, error)

	// Close releases the session
	Close() error
}

// Selectors contains CSS selectors for the elements of the shop directory site
type Selectors struct {
	ShopSidebar     string
	ShopLink        string
	BrochureList    string
	StaleMarker     string
	Title           string
	Thumbnail       string
	ValidityCaption string
}

// DefaultSelectors matches the markup of prospektmaschine.de
var DefaultSelectors = Selectors{
	ShopSidebar:     "#left-category-shops",
	ShopLink:        "a",
	BrochureList:    ".page-body .brochure-thumb",
	StaleMarker:     ".grid-item-old",
	Title:           "strong",
	Thumbnail:       "img",
	ValidityCaption: ".grid-item-content small.hidden-sm",
}

// MaxStaleMarkers is the number of stale markers a brochure may carry
// before it is treated as outdated.
const MaxStaleMarkers = 1

// ShopEntry is a shop listed in the directory sidebar
type ShopEntry struct {
	Name string
	URL  string
}

// ShopFilter selects the shops to process
type ShopFilter func(name string) bool

// AllShops selects every shop
func AllShops(string) bool {
	return true
}

// AllowList selects the shops whose name is one of names.
// An empty list or a "*" entry selects every shop.
func AllowList(names ...string) ShopFilter {
	allowed := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "*" {
			return AllShops
		}
		if name != "" {
			allowed[name] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return AllShops
	}

	return func(name string) bool {
		_, ok := allowed[name]
		return ok
	}
}
