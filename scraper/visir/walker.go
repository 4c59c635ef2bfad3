package visir

import (
	"context"
	"fmt"
	"time"

	"visir-watcher/config"
	"visir-watcher/models"
	"visir-watcher/utils"
)

const (
	baseURL = "https://fasteignir.visir.is"

	// cardSelector matches any rendered listing card; emptySelector is the
	// explicit "no results" marker. Either one means the page has settled.
	cardSelector    = `div[class*="estate__item"]`
	emptySelector   = `div.search-results-empty`
	settledSelector = cardSelector + ", " + emptySelector

	// nextSelector is the enabled next-page control. Its absence (or only a
	// disabled variant) means the current page is the last one.
	nextSelector = "a.b-navigation-direction-next:not(.disabled)"

	nextWaitTimeout = 5 * time.Second
)

// Walker drives pagination over the rendered search results: load a page,
// wait for it to settle, extract its cards, advance to the next page until
// the next control disappears or the page cap is reached.
type Walker struct {
	cfg      *config.Config
	logger   *utils.Logger
	renderer Renderer
	pacer    *utils.Pacer
	seen     *utils.LinkSet
}

// NewWalker creates a Walker over an already bootstrapped renderer session.
func NewWalker(cfg *config.Config, logger *utils.Logger, renderer Renderer) *Walker {
	return &Walker{
		cfg:      cfg,
		logger:   logger,
		renderer: renderer,
		pacer:    utils.NewPacer(time.Duration(cfg.RateLimitMs) * time.Millisecond),
		seen:     utils.NewLinkSet(),
	}
}

// StartURL builds the search URL from the run's criteria: zone identifiers,
// price and bedroom bounds, and the fixed property-category list.
func StartURL(criteria config.FilterCriteria) string {
	return fmt.Sprintf(
		"%s/search/results/?stype=sale#/?zip=%s&price=%d,%d&bedroom=%d,%d&category=2,1,4,7,17&stype=sale",
		baseURL, criteria.ZipCodes,
		criteria.MinPrice, criteria.MaxPrice,
		criteria.MinBedrooms, criteria.MaxBedrooms,
	)
}

// Walk runs the pagination loop, invoking handle once per raw card in
// discovery order. A card seen on an earlier page this run is skipped.
// Returns the number of pages walked.
func (w *Walker) Walk(ctx context.Context, handle func(models.RawCard)) (int, error) {
	startURL := StartURL(w.cfg.Criteria)
	w.logger.Info("[visir] Navigating to %s", startURL)

	w.pacer.Wait()
	if err := w.renderer.Navigate(ctx, startURL); err != nil {
		return 0, fmt.Errorf("visir: open search results: %w", err)
	}

	pages := 0
	for page := 1; ; page++ {
		renderTimeout := time.Duration(w.cfg.RenderTimeoutMs) * time.Millisecond
		settled := true
		if err := w.renderer.WaitVisible(ctx, settledSelector, renderTimeout); err != nil {
			if ctx.Err() != nil {
				return pages, ctx.Err()
			}
			w.logger.Warn("[visir] Page %d never settled (%v) — treating as final", page, err)
			settled = false
		}

		html, err := w.renderer.HTML(ctx)
		if err != nil {
			return pages, fmt.Errorf("visir: read page %d: %w", page, err)
		}

		cards, err := extractCards(html, baseURL)
		if err != nil {
			return pages, fmt.Errorf("visir: parse page %d: %w", page, err)
		}
		pages++
		w.logger.Info("[visir] Page %d — %d cards", page, len(cards))

		for _, card := range cards {
			if card.Link != "" && !w.seen.Add(card.Link) {
				w.logger.Debug("[visir] Card repeated across pages: %s", card.Link)
				continue
			}
			handle(card)
		}

		if !settled {
			return pages, nil
		}
		if page >= w.cfg.MaxPages {
			w.logger.Warn("[visir] Page cap (%d) reached — stopping pagination", w.cfg.MaxPages)
			return pages, nil
		}

		// Advance: an enabled next control within a bounded wait, else done.
		if err := w.renderer.WaitVisible(ctx, nextSelector, nextWaitTimeout); err != nil {
			if ctx.Err() != nil {
				return pages, ctx.Err()
			}
			w.logger.Info("[visir] No next-page control after page %d — done", page)
			return pages, nil
		}
		if err := w.renderer.Click(ctx, nextSelector); err != nil {
			w.logger.Warn("[visir] Next-page click failed after page %d (%v) — done", page, err)
			return pages, nil
		}
		w.pacer.Wait()
	}
}
