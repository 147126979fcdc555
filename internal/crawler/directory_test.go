package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/brochureworker/internal/page"
)

const directoryHTML = `<html><body>
<ul id="left-category-shops">
	<li><a href="/kaufland/"> Kaufland </a></li>
	<li><a href="/aldi-sud/">Aldi</a></li>
	<li><a href="/leer/">   </a></li>
	<li><a>Ohne Link</a></li>
	<li><a href="/kaufland-neu/">Kaufland</a></li>
	<li><a href="/globus/">Globus</a></li>
</ul>
<div id="footer"><a href="/impressum/">Impressum</a></div>
</body></html>`

func TestResolveShops(t *testing.T) {
	p, err := page.ParseString(directoryHTML, "https://www.prospektmaschine.de/hypermarkte/")
	require.NoError(t, err)

	directory := ResolveShops(p, "https://www.prospektmaschine.de", DefaultSelectors)

	assert.Equal(t, []ShopEntry{
		{Name: "Kaufland", URL: "https://www.prospektmaschine.de/kaufland-neu/"},
		{Name: "Aldi", URL: "https://www.prospektmaschine.de/aldi-sud/"},
		{Name: "Globus", URL: "https://www.prospektmaschine.de/globus/"},
	}, directory.Entries())

	_, ok := directory.Lookup("Impressum")
	assert.False(t, ok)
}

func TestResolveShopsWithoutSidebar(t *testing.T) {
	p, err := page.ParseString(`<html><body><a href="/x/">X</a></body></html>`, "https://example.com")
	require.NoError(t, err)

	directory := ResolveShops(p, "https://example.com", DefaultSelectors)
	assert.Equal(t, 0, directory.Len())
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://example.com/k", joinURL("https://example.com", "/k"))
	assert.Equal(t, "https://example.com/k", joinURL("https://example.com/", "/k"))
	assert.Equal(t, "https://example.comk", joinURL("https://example.com", "k"))
}

func TestShopDirectorySelect(t *testing.T) {
	directory := NewShopDirectory()
	directory.Add("Kaufland", "https://example.com/k")
	directory.Add("Aldi", "https://example.com/a")
	directory.Add("Lidl", "https://example.com/l")

	assert.Equal(t, []ShopEntry{{Name: "Kaufland", URL: "https://example.com/k"}},
		directory.Select(AllowList("Kaufland")))
	assert.Len(t, directory.Select(AllowList("Lidl", "Aldi")), 2)
	assert.Equal(t, "Aldi", directory.Select(AllowList("Lidl", "Aldi"))[0].Name)
	assert.Len(t, directory.Select(AllowList("*")), 3)
	assert.Len(t, directory.Select(AllowList()), 3)
	assert.Len(t, directory.Select(nil), 3)
	assert.Empty(t, directory.Select(AllowList("Netto")))
	assert.Len(t, directory.Select(func(name string) bool { return name != "Aldi" }), 2)
}
