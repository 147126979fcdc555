// Package browser loads shop pages through a renderer and exposes them as
// queryable pages, pacing navigations like a human visitor.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"sjsage522/brochureworker/helpers"
	"sjsage522/brochureworker/internal/page"
	"sjsage522/brochureworker/logger"
	apperrors "sjsage522/brochureworker/pkg/errors"
	"sjsage522/brochureworker/services/cache"
)

// ErrSessionClosed is returned when navigating a closed session
var ErrSessionClosed = errors.New("browser session closed")

// Renderer fetches a URL and returns its HTML as UTF-8
type Renderer interface {
	Render(ctx context.Context, url string) (io.Reader, error)
	Close() error
}

// Options configures a Session
type Options struct {
	// PageTimeout bounds a single page load
	PageTimeout time.Duration
	// PaceMin and PaceMax bound the random pause after each page load
	PaceMin time.Duration
	PaceMax time.Duration
	// BlockKey is the cache key set while the site rate limits us
	BlockKey string
	// BlockTime is how long navigation stays blocked after a rate limit
	BlockTime time.Duration
}

// DefaultOptions returns the options used against the live site
func DefaultOptions() Options {
	return Options{
		PageTimeout: 30 * time.Second,
		PaceMin:     500 * time.Millisecond,
		PaceMax:     time.Second,
		BlockKey:    "prospektmaschine_rate_limited",
		BlockTime:   500 * time.Second,
	}
}

// Session is a single browsing session. It is not safe for concurrent use.
type Session struct {
	renderer Renderer
	cacheSvc cache.CacheService
	opts     Options
	log      *logger.Logger
	closed   bool
}

// NewSession creates a session. cacheSvc may be nil, in which case rate
// limits are not remembered between navigations.
func NewSession(renderer Renderer, cacheSvc cache.CacheService, opts Options) *Session {
	return &Session{
		renderer: renderer,
		cacheSvc: cacheSvc,
		opts:     opts,
		log:      logger.ForBrowser(),
	}
}

// Navigate loads url and returns the rendered page
func (s *Session) Navigate(ctx context.Context, url string) (page.Page, error) {
	if s.closed {
		return nil, apperrors.NewNavigation("", "cannot load "+url, ErrSessionClosed)
	}
	if err := s.checkBlocked(url); err != nil {
		return nil, apperrors.NewNavigation("", "cannot load "+url, err)
	}

	body, err := s.render(ctx, url)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeRateLimit) {
			s.block()
		}
		return nil, apperrors.NewNavigation("", "failed to load "+url, err)
	}

	p, err := page.Parse(body, url)
	if err != nil {
		return nil, apperrors.NewParsing("", "failed to parse "+url, err)
	}

	s.pause(ctx)
	return p, nil
}

// Close releases the renderer. Closing twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.log.Debug().Msg("Closing browser session")
	return s.renderer.Close()
}

func (s *Session) render(ctx context.Context, url string) (io.Reader, error) {
	if s.opts.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.PageTimeout)
		defer cancel()
	}

	start := time.Now()
	body, err := s.renderer.Render(ctx, url)
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("url", url).Dur("elapsed", time.Since(start)).Msg("Page loaded")
	return body, nil
}

func (s *Session) checkBlocked(url string) error {
	if s.cacheSvc == nil || s.opts.BlockKey == "" {
		return nil
	}
	value, err := s.cacheSvc.Get(s.opts.BlockKey)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn().Err(err).Msg("Failed to read rate limit state")
		}
		return nil
	}

	seconds, _ := strconv.Atoi(string(value))
	return apperrors.NewRateLimit(url, time.Duration(seconds)*time.Second)
}

func (s *Session) block() {
	if s.cacheSvc == nil || s.opts.BlockKey == "" || s.opts.BlockTime <= 0 {
		return
	}
	value := []byte(strconv.Itoa(int(s.opts.BlockTime / time.Second)))
	if err := s.cacheSvc.Set(s.opts.BlockKey, value, s.opts.BlockTime); err != nil {
		s.log.Warn().Err(apperrors.NewCache("failed to store rate limit block", err)).Msg("Rate limit not remembered")
		return
	}
	s.log.Warn().Dur("block_time", s.opts.BlockTime).Msg("Rate limited, blocking further navigation")
}

// pause waits a random time so consecutive page loads are spaced like a
// human visitor's.
func (s *Session) pause(ctx context.Context) {
	d := helpers.RandomDuration(s.opts.PaceMin, s.opts.PaceMax)
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func retryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func statusError(url string, code int) error {
	return fmt.Errorf("%s returned unexpected status code: %d", url, code)
}
