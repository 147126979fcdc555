package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"sjsage522/brochureworker/helpers"
	apperrors "sjsage522/brochureworker/pkg/errors"
)

// HTTPOptions configures an HTTPRenderer
type HTTPOptions struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	CloudflareBypass  bool
}

// HTTPRenderer fetches pages with plain HTTP requests and browser-like headers
type HTTPRenderer struct {
	client *resty.Client
}

// NewHTTPRenderer creates a renderer backed by a resty client
func NewHTTPRenderer(opts HTTPOptions) *HTTPRenderer {
	client := resty.New()
	client.SetTimeout(opts.Timeout)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeaders(helpers.BrowserHeaders())
		if limiter != nil {
			return limiter.Wait(req.Context())
		}
		return nil
	})

	return &HTTPRenderer{client: client}
}

// Render fetches url and converts the body to UTF-8
func (r *HTTPRenderer) Render(ctx context.Context, url string) (io.Reader, error) {
	res, err := r.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	switch code := res.StatusCode(); {
	case code == http.StatusTooManyRequests || code == 430:
		return nil, apperrors.NewRateLimit(url, retryAfter(res.Header().Get("Retry-After")))
	case code != http.StatusOK:
		return nil, statusError(url, code)
	}

	return helpers.ToUTF8(res.Body(), res.Header().Get("Content-Type"))
}

// Close releases idle connections
func (r *HTTPRenderer) Close() error {
	r.client.GetClient().CloseIdleConnections()
	return nil
}
