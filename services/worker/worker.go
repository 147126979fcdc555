package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sjsage522/brochureworker/helpers"
	"sjsage522/brochureworker/internal/brochure"
	"sjsage522/brochureworker/internal/crawler"
	"sjsage522/brochureworker/logger"
	apperrors "sjsage522/brochureworker/pkg/errors"
	"sjsage522/brochureworker/services/sink"
)

// Options configures a Worker
type Options struct {
	// EntryURL is the page listing the shop directory
	EntryURL string
	// Origin is prefixed to the relative shop links of the directory
	Origin string
	// Filter selects the shops to process. Nil selects every shop.
	Filter crawler.ShopFilter
	// Failures records shops that could not be processed. Optional.
	Failures helpers.FailureRecorder
	// RunID identifies the run. A random one is generated when empty.
	RunID string
}

// ShopResult is the outcome of processing a single shop
type ShopResult struct {
	Shop    crawler.ShopEntry
	Records []brochure.Record
	Err     error
}

// Worker runs one scrape: directory, shops, then a single write to the sink
type Worker struct {
	browser   crawler.Browser
	processor *crawler.ShopProcessor
	sink      sink.Sink
	opts      Options
	log       *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(
	browser crawler.Browser,
	processor *crawler.ShopProcessor,
	s sink.Sink,
	opts Options,
) *Worker {
	if opts.Filter == nil {
		opts.Filter = crawler.AllShops
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	return &Worker{
		browser:   browser,
		processor: processor,
		sink:      s,
		opts:      opts,
		log:       logger.ForWorker().WithField("run_id", opts.RunID),
	}
}

// RunID returns the identifier of the run
func (w *Worker) RunID() string {
	return w.opts.RunID
}

// Run scrapes every selected shop and writes the collected brochures once.
// A shop that fails is skipped. When ctx is cancelled the remaining shops
// are skipped and the brochures collected so far are still written.
// The browser is closed on every return path.
func (w *Worker) Run(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panic: %v", r)
			w.log.Error().Err(err).Msg("Run aborted")
		}
		if closeErr := w.browser.Close(); closeErr != nil {
			w.log.Warn().Err(closeErr).Msg("Failed to close browser")
		}
	}()

	entry, err := w.browser.Navigate(ctx, w.opts.EntryURL)
	if err != nil {
		return fmt.Errorf("load shop directory: %w", err)
	}

	directory := crawler.ResolveShops(entry, w.opts.Origin, w.processor.Selectors)
	shops := directory.Select(w.opts.Filter)
	w.log.Info().
		Int("listed", directory.Len()).
		Int("selected", len(shops)).
		Msg("Resolved shop directory")

	results := make([]ShopResult, 0, len(shops))
	for _, shop := range shops {
		if ctx.Err() != nil {
			w.log.Warn().Err(ctx.Err()).Msg("Run cancelled, skipping remaining shops")
			break
		}
		results = append(results, w.processShop(ctx, shop))
	}

	records, failed := collect(results)

	// Persist even when cancelled so partial results survive shutdown
	if err := w.sink.Write(context.WithoutCancel(ctx), records); err != nil {
		return err
	}

	w.log.Info().
		Int("shops", len(results)).
		Int("failed", failed).
		Int("brochures", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("Run finished")
	return nil
}

// processShop never panics; any failure is reported in the result
func (w *Worker) processShop(ctx context.Context, shop crawler.ShopEntry) (result ShopResult) {
	result.Shop = shop
	defer func() {
		if r := recover(); r != nil {
			result.Records = nil
			result.Err = apperrors.NewParsing(shop.Name, "shop processing panicked", fmt.Errorf("%v", r))
		}
		if result.Err != nil {
			logger.LogError(shop.Name, result.Err, "Skipping shop")
			if w.opts.Failures != nil {
				w.opts.Failures.RecordFailure(shop.Name, result.Err)
			}
		}
	}()

	logger.Info("Processing: %s", shop.Name)

	pg, err := w.browser.Navigate(ctx, shop.URL)
	if err != nil {
		result.Err = apperrors.NewNavigation(shop.Name, "failed to load shop page", err)
		return result
	}

	result.Records = w.processor.Process(shop.Name, pg)
	return result
}

func collect(results []ShopResult) ([]brochure.Record, int) {
	records := []brochure.Record{}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		records = append(records, r.Records...)
	}
	return records, failed
}
