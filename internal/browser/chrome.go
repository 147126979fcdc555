package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"sjsage522/brochureworker/helpers"
	apperrors "sjsage522/brochureworker/pkg/errors"
)

// renderScript runs inside a browserless /function call. It waits for the
// network to settle and scrolls the page so lazily loaded brochures render.
const renderScript = `module.exports = async ({ page, context }) => {
	await page.setViewport({ width: 1280, height: 800 });
	await page.setUserAgent(context.userAgent);
	await page.goto(context.url, { waitUntil: 'networkidle2', timeout: context.timeout });
	await page.evaluate(async () => {
		window.scrollBy(0, 500);
		await new Promise(resolve => setTimeout(resolve, 200));
		window.scrollBy(0, document.body.scrollHeight * 0.7);
	});
	return { data: await page.content(), type: 'text/html' };
};`

type functionRequest struct {
	Code    string          `json:"code"`
	Context functionContext `json:"context"`
}

type functionContext struct {
	URL       string `json:"url"`
	UserAgent string `json:"userAgent"`
	Timeout   int64  `json:"timeout"`
}

// ChromeRenderer renders pages in a headless Chrome served by browserless
type ChromeRenderer struct {
	addr    string
	timeout time.Duration
	client  *resty.Client
}

// NewChromeRenderer creates a renderer posting to the browserless instance at addr
func NewChromeRenderer(addr string, timeout time.Duration) *ChromeRenderer {
	client := resty.New()
	// Leave headroom for browserless to report its own navigation timeout
	client.SetTimeout(timeout + 5*time.Second)

	return &ChromeRenderer{
		addr:    strings.TrimRight(addr, "/"),
		timeout: timeout,
		client:  client,
	}
}

// Render loads url in Chrome and returns the rendered HTML
func (r *ChromeRenderer) Render(ctx context.Context, url string) (io.Reader, error) {
	res, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(functionRequest{
			Code: renderScript,
			Context: functionContext{
				URL:       url,
				UserAgent: helpers.RandomUserAgent(),
				Timeout:   r.timeout.Milliseconds(),
			},
		}).
		Post(r.addr + "/function")
	if err != nil {
		return nil, fmt.Errorf("failed to call browserless for %s: %w", url, err)
	}

	switch code := res.StatusCode(); {
	case code == http.StatusTooManyRequests:
		return nil, apperrors.NewRateLimit(url, retryAfter(res.Header().Get("Retry-After")))
	case code != http.StatusOK:
		return nil, statusError(r.addr+"/function", code)
	}

	content := extractContent(res.Body())
	if !strings.Contains(content, "<html") && !strings.Contains(content, "<body") {
		return nil, fmt.Errorf("browserless returned no html for %s", url)
	}
	return strings.NewReader(content), nil
}

// Close releases idle connections
func (r *ChromeRenderer) Close() error {
	r.client.GetClient().CloseIdleConnections()
	return nil
}

// extractContent unwraps JSON responses of older browserless versions
func extractContent(body []byte) string {
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		return string(body)
	}

	var result struct {
		Data   string `json:"data"`
		Result string `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return string(body)
	}
	if result.Data != "" {
		return result.Data
	}
	return result.Result
}
