package helpers

import (
	"bytes"
	"fmt"
	"io"
	mathrand "math/rand"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// Header configurations
var (
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64; rv:124.0) Gecko/20100101 Firefox/124.0",
	}

	referers = []string{
		"https://www.google.de/",
		"https://www.bing.com/",
		"https://duckduckgo.com/",
	}
)

// RandomUserAgent returns one of the known browser user agents
func RandomUserAgent() string {
	return userAgents[mathrand.Intn(len(userAgents))]
}

// BrowserHeaders returns browser-like request headers with a random user agent and referer
func BrowserHeaders() map[string]string {
	return map[string]string{
		"User-Agent":                RandomUserAgent(),
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "de-DE,de;q=0.9,en-US;q=0.8,en;q=0.7",
		"Cache-Control":             "no-cache",
		"Pragma":                    "no-cache",
		"Referer":                   referers[mathrand.Intn(len(referers))],
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "cross-site",
		"Sec-Fetch-User":            "?1",
	}
}

// ToUTF8 converts an HTML body to UTF-8 using the Content-Type header and
// the body content to determine its encoding.
func ToUTF8(body []byte, contentType string) (io.Reader, error) {
	encoding, name, _ := charset.DetermineEncoding(body, contentType)

	if strings.EqualFold(name, "utf-8") {
		return bytes.NewReader(body), nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(body))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, fmt.Errorf("failed to read converted UTF-8 body: %w", err)
	}

	return &buf, nil
}

// RandomDuration returns a duration in [min, max]. If max is not greater
// than min, min is returned.
func RandomDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(mathrand.Int63n(int64(max-min)+1))
}
