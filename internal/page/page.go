// Package page exposes a rendered page as a small query capability so the
// scraping code never touches the HTML parser directly.
package page

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Page is a rendered page that can be queried with CSS selectors
type Page interface {
	// URL returns the address the page was loaded from
	URL() string

	// Query returns every element matching selector, in document order
	Query(selector string) []Element
}

// Element is a handle to a single element of a page.
// Lookups that match nothing return empty values, never errors.
type Element interface {
	// Text returns the combined text content of the element
	Text() string

	// Attr returns the value of the named attribute
	Attr(name string) (string, bool)

	// Count returns the number of descendants matching selector
	Count(selector string) int

	// Find returns the first descendant matching selector
	Find(selector string) Element

	// Query returns every descendant matching selector
	Query(selector string) []Element
}

type document struct {
	url string
	doc *goquery.Document
}

type element struct {
	sel *goquery.Selection
}

// Parse parses an HTML document read from r
func Parse(r io.Reader, url string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html of %s: %w", url, err)
	}
	return FromDocument(doc, url), nil
}

// ParseString parses an HTML document held in a string
func ParseString(html, url string) (Page, error) {
	return Parse(strings.NewReader(html), url)
}

// FromDocument wraps an already parsed goquery document
func FromDocument(doc *goquery.Document, url string) Page {
	return &document{url: url, doc: doc}
}

func (d *document) URL() string {
	return d.url
}

func (d *document) Query(selector string) []Element {
	return elements(d.doc.Find(selector))
}

func (e *element) Text() string {
	return e.sel.Text()
}

func (e *element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e *element) Count(selector string) int {
	return e.sel.Find(selector).Length()
}

func (e *element) Find(selector string) Element {
	return &element{sel: e.sel.Find(selector).First()}
}

func (e *element) Query(selector string) []Element {
	return elements(e.sel.Find(selector))
}

func elements(selections *goquery.Selection) []Element {
	result := make([]Element, 0, selections.Length())
	selections.Each(func(_ int, s *goquery.Selection) {
		result = append(result, &element{sel: s})
	})
	return result
}
