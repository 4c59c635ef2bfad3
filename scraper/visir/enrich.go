package visir

import (
	"context"
	"strings"
	"time"

	"visir-watcher/config"
	"visir-watcher/models"
	"visir-watcher/utils"
)

// Detail-page keyword signals. These are best-effort substring matches on
// the rendered page text, not structured fields: "svalir" is balcony,
// "sérafnota" and "garð" both indicate a private yard or terrace.
const (
	balconyKeyword  = "svalir"
	terraceKeyword  = "sérafnota"
	terraceKeyword2 = "garð"
)

// Enricher visits each new listing's detail page and derives the
// balcony/terrace flags.
type Enricher struct {
	cfg      *config.Config
	logger   *utils.Logger
	renderer Renderer
	pacer    *utils.Pacer
}

// NewEnricher creates an Enricher sharing the walker's renderer session.
func NewEnricher(cfg *config.Config, logger *utils.Logger, renderer Renderer) *Enricher {
	return &Enricher{
		cfg:      cfg,
		logger:   logger,
		renderer: renderer,
		pacer:    utils.NewPacer(time.Duration(cfg.RateLimitMs) * time.Millisecond),
	}
}

// Enrich populates HasBalcony/HasTerrace on every record. A failure on one
// record defaults its flags to false and moves on; one bad detail page must
// never abort the batch.
func (e *Enricher) Enrich(ctx context.Context, records []*models.ListingRecord) {
	for _, rec := range records {
		balcony, terrace, err := e.scanDetailPage(ctx, rec.Link)
		if err != nil {
			e.logger.Warn("[visir] Detail page failed for %s: %v", rec.Address, err)
			balcony, terrace = false, false
		}
		rec.HasBalcony = &balcony
		rec.HasTerrace = &terrace
	}
}

func (e *Enricher) scanDetailPage(ctx context.Context, link string) (balcony, terrace bool, err error) {
	e.pacer.Wait()
	if err := e.renderer.Navigate(ctx, link); err != nil {
		return false, false, err
	}

	// Short settle wait; a slow detail page still gets scanned with
	// whatever has rendered by the deadline.
	settle := time.Duration(e.cfg.SettleMs) * time.Millisecond
	if err := e.renderer.WaitVisible(ctx, "body", settle); err != nil && ctx.Err() != nil {
		return false, false, ctx.Err()
	}

	html, err := e.renderer.HTML(ctx)
	if err != nil {
		return false, false, err
	}

	text := strings.ToLower(html)
	balcony = strings.Contains(text, balconyKeyword)
	terrace = strings.Contains(text, terraceKeyword) || strings.Contains(text, terraceKeyword2)
	return balcony, terrace, nil
}
