package services

import (
	"context"
	"fmt"
	"sort"

	"visir-watcher/models"
	"visir-watcher/storage"
	"visir-watcher/utils"
)

// PageSource produces raw listing cards in discovery order. Implemented by
// the visir walker; tests substitute a fake.
type PageSource interface {
	Walk(ctx context.Context, handle func(models.RawCard)) (pages int, err error)
}

// Enricher fills in the detail-page feature flags on a batch of records.
type Enricher interface {
	Enrich(ctx context.Context, records []*models.ListingRecord)
}

// Reconciler orchestrates one run: walk the paginated source, normalize and
// filter every card, reconcile against the persisted catalog, persist, then
// enrich and order the newly discovered records.
type Reconciler struct {
	store      storage.CatalogStore
	source     PageSource
	enricher   Enricher
	normalizer *Normalizer
	filter     *FilterEngine
	logger     *utils.Logger
}

// NewReconciler wires the run pipeline together.
func NewReconciler(store storage.CatalogStore, source PageSource, enricher Enricher,
	normalizer *Normalizer, filter *FilterEngine, logger *utils.Logger) *Reconciler {
	return &Reconciler{
		store:      store,
		source:     source,
		enricher:   enricher,
		normalizer: normalizer,
		filter:     filter,
		logger:     logger,
	}
}

// Run executes one reconciliation pass and returns the new-since-last-run
// records sorted ascending by price, unpriced records last. The catalog is
// saved before enrichment, whether or not anything new was found.
func (r *Reconciler) Run(ctx context.Context) ([]*models.ListingRecord, *models.RunSummary, error) {
	catalog, err := r.store.Load()
	if err != nil {
		r.logger.Warn("[run] Catalog unreadable, starting from empty: %v", err)
	}
	r.logger.Info("[run] Catalog loaded — %d known listings", catalog.Len())

	summary := &models.RunSummary{}
	var delta []*models.ListingRecord

	pages, err := r.source.Walk(ctx, func(card models.RawCard) {
		summary.CardsSeen++

		rec, err := r.normalizer.Normalize(card)
		if err != nil {
			summary.Rejected++
			return
		}
		if !r.filter.Accept(rec) {
			summary.Rejected++
			return
		}
		if catalog.Contains(rec.Link) {
			summary.Duplicates++
			return
		}
		if err := catalog.Append(rec); err != nil {
			r.logger.Warn("[run] Catalog append refused %s: %v", rec.Link, err)
			return
		}
		delta = append(delta, rec)
		summary.Accepted++
	})
	summary.PagesWalked = pages
	if err != nil {
		return nil, summary, fmt.Errorf("run: pagination: %w", err)
	}

	// Persist before enrichment so the catalog reflects every page walked
	// even if enrichment or notification later fails.
	if err := r.store.Save(catalog); err != nil {
		return nil, summary, fmt.Errorf("run: persist catalog: %w", err)
	}
	r.logger.Info("[run] Catalog saved — %d listings (%d new)", catalog.Len(), summary.Accepted)

	if len(delta) > 0 {
		r.enricher.Enrich(ctx, delta)
	}

	sortByPrice(delta)

	r.logger.Info("[run] Pages: %d | cards: %d | new: %d | already known: %d | rejected: %d",
		summary.PagesWalked, summary.CardsSeen, summary.Accepted,
		summary.Duplicates, summary.Rejected)

	return delta, summary, nil
}

// sortByPrice orders records ascending by parsed price. Records without a
// parsed price sort last; ties keep discovery order.
func sortByPrice(records []*models.ListingRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		pi, pj := records[i].PriceValue, records[j].PriceValue
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return *pi < *pj
		}
	})
}
