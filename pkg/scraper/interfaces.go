package scraper

import (
	"context"

	"catalogscraper/internal/enricher"
	"catalogscraper/pkg/models"
)

// PageSource returns the candidates listed on one catalog page
type PageSource interface {
	FetchListing(ctx context.Context, page int) ([]models.CandidateRecord, error)
}

// Enricher fetches detail fields for a page's batch of new candidates and
// returns once every fetch has finished
type Enricher interface {
	EnrichBatch(ctx context.Context, candidates []models.CandidateRecord) enricher.Batch
}

// Reporter receives per-page progress for display
type Reporter interface {
	PageStarted(page int)
	PagePersisted(page, added, skipped, failures, total int)
}
