package crawler

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/brochureworker/internal/brochure"
	"sjsage522/brochureworker/internal/dates"
	"sjsage522/brochureworker/internal/page"
)

const shopHTML = `<html><body>
<div class="page-body">
	<div class="brochure-thumb">
		<a href="/kaufland/prospekt-1/"><img src="https://img.example/current.jpg"></a>
		<div class="grid-item-content">
			<strong>Aktueller Prospekt</strong>
			<small class="hidden-sm">von Montag 23.03.2025</small>
		</div>
	</div>
	<div class="brochure-thumb">
		<img src="https://img.example/expired.jpg">
		<div class="grid-item-content">
			<strong>Alter Prospekt</strong>
			<small class="hidden-sm">gültig 01.01.2020 - 10.01.2020</small>
		</div>
	</div>
	<div class="brochure-thumb">
		<span class="grid-item-old"></span><span class="grid-item-old"></span>
		<img src="https://img.example/stale.jpg">
		<div class="grid-item-content">
			<strong>Markierter Prospekt</strong>
			<small class="hidden-sm">20.03.2025 - 29.03.2025</small>
		</div>
	</div>
	<div class="brochure-thumb">
		<span class="grid-item-old"></span>
		<img src="https://img.example/range.jpg">
		<div class="grid-item-content">
			<strong>Wochenangebote</strong>
			<small class="hidden-sm">20.03.2025 - 25.03.2025</small>
		</div>
	</div>
</div>
</body></html>`

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func parsePage(t *testing.T, html string) page.Page {
	t.Helper()
	p, err := page.ParseString(html, "https://www.prospektmaschine.de/kaufland/")
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }

func TestShopProcessor_Process(t *testing.T) {
	now := time.Date(2025, 3, 25, 18, 30, 0, 0, time.Local)
	processor := NewShopProcessor(dates.NativeLayout)
	processor.Now = fixedClock(now)

	records := processor.Process("Kaufland", parsePage(t, shopHTML))

	expected := []brochure.Record{
		{
			Title:      "Aktueller Prospekt",
			Thumbnail:  "https://img.example/current.jpg",
			ShopName:   "Kaufland",
			ValidFrom:  strPtr("23.03.2025"),
			ParsedTime: "2025-03-25 18:30:00",
		},
		{
			Title:      "Wochenangebote",
			Thumbnail:  "https://img.example/range.jpg",
			ShopName:   "Kaufland",
			ValidFrom:  strPtr("20.03.2025"),
			ValidTo:    strPtr("25.03.2025"),
			ParsedTime: "2025-03-25 18:30:00",
		},
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestShopProcessor_ReformatsStoredDates(t *testing.T) {
	processor := NewShopProcessor("2006-01-02")
	processor.Now = fixedClock(time.Date(2025, 3, 25, 9, 0, 0, 0, time.Local))

	records := processor.Process("Kaufland", parsePage(t, shopHTML))
	require.Len(t, records, 2)

	require.NotNil(t, records[0].ValidFrom)
	assert.Equal(t, "2025-03-23", *records[0].ValidFrom)
	assert.Nil(t, records[0].ValidTo)
	assert.Equal(t, "2025-03-20", *records[1].ValidFrom)
	assert.Equal(t, "2025-03-25", *records[1].ValidTo)
}

func TestShopProcessor_ExpiredBrochure(t *testing.T) {
	html := `<div class="page-body"><div class="brochure-thumb">
		<div class="grid-item-content"><strong>Januar</strong>
		<small class="hidden-sm">gültig 01.01.2020 - 10.01.2020</small></div>
	</div></div>`

	processor := NewShopProcessor("2006-01-02")
	processor.Now = fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local))

	assert.Empty(t, processor.Process("Kaufland", parsePage(t, html)))
}

func TestShopProcessor_StaleMarkerWins(t *testing.T) {
	html := `<div class="page-body"><div class="brochure-thumb">
		<i class="grid-item-old"></i><i class="grid-item-old"></i><i class="grid-item-old"></i>
		<div class="grid-item-content"><strong>Immer gültig</strong>
		<small class="hidden-sm">01.01.2000 - 31.12.2099</small></div>
	</div></div>`

	processor := NewShopProcessor(dates.NativeLayout)
	assert.Empty(t, processor.Process("Kaufland", parsePage(t, html)))
}

func TestShopProcessor_NoDatesIsNotValid(t *testing.T) {
	html := `<div class="page-body"><div class="brochure-thumb">
		<div class="grid-item-content"><strong>Ohne Datum</strong></div>
	</div></div>`

	processor := NewShopProcessor(dates.NativeLayout)
	assert.Empty(t, processor.Process("Kaufland", parsePage(t, html)))
}

func TestShopProcessor_EmptyListing(t *testing.T) {
	processor := NewShopProcessor(dates.NativeLayout)
	records := processor.Process("Kaufland", parsePage(t, `<html><body><div class="page-body"></div></body></html>`))
	assert.Empty(t, records)
}

func TestShopProcessor_MissingTitleAndThumbnail(t *testing.T) {
	html := `<div class="page-body"><div class="brochure-thumb">
		<div class="grid-item-content"><small class="hidden-sm">bis 31.12.2099</small></div>
	</div></div>`

	processor := NewShopProcessor(dates.NativeLayout)
	records := processor.Process("Kaufland", parsePage(t, html))
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].Title)
	assert.Equal(t, "", records[0].Thumbnail)
	assert.Nil(t, records[0].ValidFrom)
	assert.Equal(t, "31.12.2099", *records[0].ValidTo)
}

// fakePage returns canned elements
type fakePage struct {
	url      string
	elements []page.Element
}

func (p *fakePage) URL() string                          { return p.url }
func (p *fakePage) Query(selector string) []page.Element { return p.elements }

// panicElement simulates an element whose handle broke while reading it
type panicElement struct{}

func (panicElement) Text() string                { panic("detached element") }
func (panicElement) Attr(string) (string, bool)  { panic("detached element") }
func (panicElement) Count(string) int            { panic("detached element") }
func (panicElement) Find(string) page.Element    { panic("detached element") }
func (panicElement) Query(string) []page.Element { panic("detached element") }

func TestShopProcessor_IsolatesBrokenElements(t *testing.T) {
	valid := parsePage(t, shopHTML).Query(DefaultSelectors.BrochureList)[0]

	processor := NewShopProcessor(dates.NativeLayout)
	processor.Now = fixedClock(time.Date(2025, 3, 25, 12, 0, 0, 0, time.Local))

	records := processor.Process("Kaufland", &fakePage{
		url:      "https://www.prospektmaschine.de/kaufland/",
		elements: []page.Element{panicElement{}, valid, panicElement{}},
	})
	require.Len(t, records, 1)
	assert.Equal(t, "Aktueller Prospekt", records[0].Title)
}
