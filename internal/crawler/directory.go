package crawler

import (
	"strings"

	"sjsage522/brochureworker/internal/page"
	"sjsage522/brochureworker/logger"
)

// ShopDirectory maps shop names to shop pages, keeping the order in which
// the shops appear on the directory page.
type ShopDirectory struct {
	entries []ShopEntry
	index   map[string]int
}

// NewShopDirectory creates an empty directory
func NewShopDirectory() *ShopDirectory {
	return &ShopDirectory{index: make(map[string]int)}
}

// Add adds a shop. A name that is already present keeps its position and
// takes the new URL. It reports whether an entry was replaced.
func (d *ShopDirectory) Add(name, url string) bool {
	if i, ok := d.index[name]; ok {
		d.entries[i].URL = url
		return true
	}
	d.index[name] = len(d.entries)
	d.entries = append(d.entries, ShopEntry{Name: name, URL: url})
	return false
}

// Lookup returns the URL of the named shop
func (d *ShopDirectory) Lookup(name string) (string, bool) {
	i, ok := d.index[name]
	if !ok {
		return "", false
	}
	return d.entries[i].URL, true
}

// Len returns the number of shops
func (d *ShopDirectory) Len() int {
	return len(d.entries)
}

// Entries returns all shops in directory order
func (d *ShopDirectory) Entries() []ShopEntry {
	entries := make([]ShopEntry, len(d.entries))
	copy(entries, d.entries)
	return entries
}

// Select returns the shops accepted by filter in directory order
func (d *ShopDirectory) Select(filter ShopFilter) []ShopEntry {
	if filter == nil {
		filter = AllShops
	}
	var selected []ShopEntry
	for _, entry := range d.entries {
		if filter(entry.Name) {
			selected = append(selected, entry)
		}
	}
	return selected
}

// ResolveShops reads the shop links from the directory sidebar. Links with
// an empty name or href are skipped; the shop URL is origin + href.
func ResolveShops(p page.Page, origin string, selectors Selectors) *ShopDirectory {
	directory := NewShopDirectory()
	log := logger.ForCrawler("directory")

	for _, sidebar := range p.Query(selectors.ShopSidebar) {
		for _, link := range sidebar.Query(selectors.ShopLink) {
			name := strings.TrimSpace(link.Text())
			href, _ := link.Attr("href")
			if name == "" || href == "" {
				continue
			}

			// TODO: confirm with the site owner whether duplicate sidebar names can point to different shops
			if directory.Add(name, joinURL(origin, href)) {
				log.Debug().Str("shop", name).Str("href", href).Msg("Duplicate shop in sidebar, keeping last link")
			}
		}
	}

	log.Debug().Int("shop_count", directory.Len()).Str("url", p.URL()).Msg("Resolved shop directory")
	return directory
}

func joinURL(origin, href string) string {
	if strings.HasSuffix(origin, "/") && strings.HasPrefix(href, "/") {
		return origin + href[1:]
	}
	return origin + href
}
