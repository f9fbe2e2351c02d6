package scraper

import (
	"context"

	"catalogscraper/pkg/logger"
	"catalogscraper/pkg/models"
)

// Outcome classifies the result of a page fetch
type Outcome int

const (
	// PageOK means the page listed at least one candidate
	PageOK Outcome = iota
	// PageExhausted means the source reported an empty page
	PageExhausted
	// PageFailed means the page could not be fetched or parsed
	PageFailed
)

func (o Outcome) String() string {
	switch o {
	case PageOK:
		return "ok"
	case PageExhausted:
		return "exhausted"
	case PageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Page is one step of the pagination walk
type Page struct {
	Index      int
	Candidates []models.CandidateRecord
	HasMore    bool
	Outcome    Outcome
	Err        error
}

// Walker asks a page source for successive listing pages
type Walker struct {
	source PageSource
	logger logger.Logger
}

// NewWalker creates a walker over source
func NewWalker(source PageSource, log logger.Logger) *Walker {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Walker{
		source: source,
		logger: log.WithField("component", "walker"),
	}
}

// FetchPage fetches page index once. A failed fetch is reported with
// HasMore false, the same as an empty page, and Outcome tells them apart.
func (w *Walker) FetchPage(ctx context.Context, index int) Page {
	candidates, err := w.source.FetchListing(ctx, index)
	if err != nil {
		w.logger.WithError(err).WarnWithFields("Listing page failed", map[string]interface{}{
			"page": index,
		})
		return Page{Index: index, Outcome: PageFailed, Err: err}
	}

	if len(candidates) == 0 {
		w.logger.InfoWithFields("Listing page empty, end of catalog", map[string]interface{}{
			"page": index,
		})
		return Page{Index: index, Outcome: PageExhausted}
	}

	return Page{
		Index:      index,
		Candidates: candidates,
		HasMore:    true,
		Outcome:    PageOK,
	}
}
