package crawler

import (
	"fmt"
	"strings"
	"time"

	"sjsage522/brochureworker/internal/brochure"
	"sjsage522/brochureworker/internal/dates"
	"sjsage522/brochureworker/internal/page"
	"sjsage522/brochureworker/logger"
	apperrors "sjsage522/brochureworker/pkg/errors"
)

// ShopProcessor extracts the currently valid brochures from a shop page
type ShopProcessor struct {
	Selectors   Selectors
	Interpreter dates.Interpreter
	// OutputLayout is the layout of the dates stored in records
	OutputLayout string
	Now          func() time.Time
}

// NewShopProcessor creates a processor storing dates in outputLayout
func NewShopProcessor(outputLayout string) *ShopProcessor {
	return &ShopProcessor{
		Selectors:    DefaultSelectors,
		Interpreter:  dates.Default,
		OutputLayout: outputLayout,
		Now:          time.Now,
	}
}

// Process returns the valid brochures listed on a shop page. A page without
// brochures yields no records. A brochure that cannot be read is skipped
// without affecting the others.
func (p *ShopProcessor) Process(shop string, pg page.Page) []brochure.Record {
	log := logger.ForShop(shop)

	elements := pg.Query(p.Selectors.BrochureList)
	if len(elements) == 0 {
		log.Debug().Str("url", pg.URL()).Msg("No brochures listed")
		return nil
	}

	var records []brochure.Record
	for i, el := range elements {
		record, err := p.parseBrochure(shop, el)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping brochure")
			continue
		}
		if record != nil {
			records = append(records, *record)
		}
	}

	log.Info().
		Int("listed", len(elements)).
		Int("valid", len(records)).
		Msg("Processed shop page")
	return records
}

// parseBrochure returns nil without error for stale or expired brochures
func (p *ShopProcessor) parseBrochure(shop string, el page.Element) (record *brochure.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			record = nil
			err = apperrors.NewParsing(shop, "unreadable brochure element", fmt.Errorf("%v", r))
		}
	}()

	// Brochures the site itself marks as old are not current
	if el.Count(p.Selectors.StaleMarker) > MaxStaleMarkers {
		return nil, nil
	}

	title := strings.TrimSpace(el.Find(p.Selectors.Title).Text())
	thumbnail, _ := el.Find(p.Selectors.Thumbnail).Attr("src")
	caption := el.Find(p.Selectors.ValidityCaption).Text()

	now := p.Now()
	window := p.Interpreter.Extract(caption)
	if !dates.IsCurrentlyValid(window, dates.NativeLayout, now) {
		logger.ForShop(shop).Debug().
			Str("title", title).
			Str("caption", strings.TrimSpace(caption)).
			Msg("Brochure not currently valid")
		return nil, nil
	}

	if p.OutputLayout != "" && p.OutputLayout != dates.NativeLayout {
		window, err = dates.Reformat(window, dates.NativeLayout, p.OutputLayout)
		if err != nil {
			return nil, apperrors.NewParsing(shop, "failed to reformat validity dates", err)
		}
	}

	r := brochure.New(title, strings.TrimSpace(thumbnail), shop, window, now)
	return &r, nil
}
