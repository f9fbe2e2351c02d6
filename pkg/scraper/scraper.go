package scraper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"catalogscraper/internal/enricher"
	"catalogscraper/pkg/catalog"
	"catalogscraper/pkg/checkpoint"
	"catalogscraper/pkg/config"
	"catalogscraper/pkg/logger"
	"catalogscraper/pkg/merge"
	"catalogscraper/pkg/models"
	"catalogscraper/pkg/ratelimit"
	"catalogscraper/pkg/retry"
	"catalogscraper/pkg/storage"
)

// ErrPageSource is returned by Run when a listing page fails and strict
// paging is enabled
var ErrPageSource = errors.New("page source failed")

// Scraper walks the catalog page by page, enriches unseen candidates and
// persists the whole collection after every page
type Scraper struct {
	walker     *Walker
	enricher   Enricher
	store      storage.Store
	pacer      ratelimit.Limiter
	pageRetry  *retry.Config
	checkpoint *checkpoint.Manager
	reporter   Reporter
	onState    func(State, int)
	crawl      config.CrawlConfig
	source     string
	logger     logger.Logger

	state atomic.Int32
}

// New wires a scraper to the HTTP catalog described by cfg
func New(cfg *config.Config, store storage.Store, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}

	client := catalog.NewClient(cfg.Source, log)
	base := client.Endpoints().BaseURL
	// the host serves listing fragments only to same-origin requests
	client.SetHeader("Referer", base+"/")

	s := NewWithSources(cfg.Crawl, client, client, store, log)
	s.source = base
	return s
}

// NewWithSources creates a scraper over arbitrary page and detail sources
func NewWithSources(crawl config.CrawlConfig, pages PageSource, details enricher.DetailSource, store storage.Store, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	if crawl.StartPage < 1 {
		crawl.StartPage = 1
	}

	s := &Scraper{
		walker:   NewWalker(pages, log),
		enricher: enricher.NewPool(crawl.Workers, details, log),
		store:    store,
		pacer:    ratelimit.NewFixedDelay(crawl.PageDelay),
		crawl:    crawl,
		logger:   log.WithField("component", "scraper"),
	}
	if crawl.PageRetries > 0 {
		s.pageRetry = retry.PageConfig(crawl.PageRetries, s.logger)
	}
	return s
}

// SetEnricher replaces the detail enricher
func (s *Scraper) SetEnricher(e Enricher) {
	s.enricher = e
}

// SetPacer replaces the inter-page pacer
func (s *Scraper) SetPacer(l ratelimit.Limiter) {
	s.pacer = l
}

// SetPageRetry sets the retry policy for failed listing pages; nil disables retries
func (s *Scraper) SetPageRetry(cfg *retry.Config) {
	s.pageRetry = cfg
}

// SetCheckpoint enables the run-state sidecar
func (s *Scraper) SetCheckpoint(m *checkpoint.Manager) {
	s.checkpoint = m
}

// SetReporter sets the progress reporter
func (s *Scraper) SetReporter(r Reporter) {
	s.reporter = r
}

// SetStateObserver registers fn to be called on every state transition
// with the current page index
func (s *Scraper) SetStateObserver(fn func(State, int)) {
	s.onState = fn
}

// State returns the current state of the run
func (s *Scraper) State() State {
	return State(s.state.Load())
}

func (s *Scraper) setState(st State, page int) {
	s.state.Store(int32(st))
	if s.onState != nil {
		s.onState(st, page)
	}
}

// Run crawls from the configured start page until the catalog is exhausted.
// ctx is checked between pages only; a page that has started is always
// enriched and persisted before Run returns.
func (s *Scraper) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	detached := context.WithoutCancel(ctx)

	s.setState(StateIdle, 0)
	collection := s.store.Load(detached)
	known := storage.IdentityKeys(collection)

	summary := Summary{Total: len(collection)}
	runState := s.startRunState(len(collection))

	logger.LogComponentStart(s.logger, "scraper", map[string]interface{}{
		"store":      s.store.Location(),
		"known":      known.Len(),
		"start_page": s.crawl.StartPage,
		"max_pages":  s.crawl.MaxPages,
		"workers":    s.crawl.Workers,
	})

	var runErr error
	index := s.crawl.StartPage
	for {
		if ctx.Err() != nil {
			summary.StopReason = StopCancelled
			runErr = ctx.Err()
			break
		}
		if s.crawl.MaxPages > 0 && summary.PagesVisited >= s.crawl.MaxPages {
			summary.StopReason = StopMaxPages
			break
		}

		s.setState(StatePaging, index)
		if s.reporter != nil {
			s.reporter.PageStarted(index)
		}
		page, err := s.fetchPage(ctx, index)
		summary.PagesVisited++
		summary.LastPage = index
		if err != nil {
			summary.StopReason = StopCancelled
			runErr = err
			break
		}

		if page.Outcome == PageFailed {
			summary.StopReason = StopPageFailed
			if s.crawl.StrictPages {
				runErr = fmt.Errorf("%w: page %d: %w", ErrPageSource, index, page.Err)
			} else {
				s.logger.WithError(page.Err).WarnWithFields("Treating failed page as end of catalog", map[string]interface{}{
					"page": index,
				})
			}
			break
		}
		if !page.HasMore || len(page.Candidates) == 0 {
			summary.StopReason = StopExhausted
			break
		}

		fresh, skipped := s.filterNew(page.Candidates, known)

		s.setState(StateDraining, index)
		batch := s.enricher.EnrichBatch(detached, fresh)
		var added, failures int
		collection, added, failures = s.appendPage(collection, known, fresh, batch)

		s.setState(StatePersisting, index)
		if err := s.store.Save(detached, collection); err != nil {
			summary.StopReason = StopPersist
			runErr = fmt.Errorf("persist page %d: %w", index, err)
			break
		}

		summary.Added += added
		summary.Skipped += skipped
		summary.EnrichFailures += failures
		summary.Total = len(collection)

		logger.LogPage(s.logger, index, len(page.Candidates), added, skipped)
		s.recordPage(runState, checkpoint.PageProgress{
			Page:           index,
			Added:          added,
			Skipped:        skipped,
			EnrichFailures: failures,
			TotalRecords:   len(collection),
		})
		if s.reporter != nil {
			s.reporter.PagePersisted(index, added, skipped, failures, len(collection))
		}

		index++
		if err := s.pacer.Wait(ctx); err != nil {
			summary.StopReason = StopCancelled
			runErr = err
			break
		}
	}

	s.setState(StateDone, summary.LastPage)
	summary.Duration = time.Since(start)
	s.finishRunState(runState, summary.StopReason)

	logger.LogMetrics(s.logger, "crawl", map[string]interface{}{
		"pages_visited":   summary.PagesVisited,
		"last_page":       summary.LastPage,
		"added":           summary.Added,
		"skipped":         summary.Skipped,
		"enrich_failures": summary.EnrichFailures,
		"total":           summary.Total,
		"stop_reason":     summary.StopReason,
		"duration":        summary.Duration.String(),
	})
	logger.LogComponentStop(s.logger, "scraper", summary.StopReason)

	return summary, runErr
}

// fetchPage asks the walker for one page, retrying failed fetches when a
// retry policy is set. Only the waits between attempts observe ctx; when ctx
// ends during such a wait the page is abandoned and ctx.Err() is returned.
func (s *Scraper) fetchPage(ctx context.Context, index int) (Page, error) {
	detached := context.WithoutCancel(ctx)
	if s.pageRetry == nil {
		return s.walker.FetchPage(detached, index), nil
	}

	page, err := retry.DoWithResult(ctx, func(context.Context) (Page, error) {
		p := s.walker.FetchPage(detached, index)
		if p.Outcome == PageFailed {
			return p, p.Err
		}
		return p, nil
	}, s.pageRetry)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.logger.WithError(err).InfoWithFields("Page retry interrupted", map[string]interface{}{
				"page": index,
			})
			return Page{Index: index, Outcome: PageFailed, Err: err}, ctxErr
		}
		return Page{Index: index, Outcome: PageFailed, Err: err}, nil
	}
	return page, nil
}

// filterNew drops candidates that are already known, repeated within the
// page or missing a locator. Unless enrichment success is required, the
// remaining candidates are marked known right away.
func (s *Scraper) filterNew(candidates []models.CandidateRecord, known models.KeySet) (fresh []models.CandidateRecord, skipped int) {
	inPage := models.NewKeySet(len(candidates))
	for _, c := range candidates {
		if c.URL == "" {
			s.logger.WarnWithFields("Skipping candidate without locator", map[string]interface{}{
				"title": c.Title,
			})
			skipped++
			continue
		}
		if known.Has(c.URL) || inPage.Has(c.URL) {
			skipped++
			continue
		}
		inPage.Add(c.URL)
		if !s.crawl.MarkKnownOnSuccess {
			known.Add(c.URL)
		}
		fresh = append(fresh, c)
	}
	return fresh, skipped
}

// appendPage merges the batch in candidate order and appends the records
func (s *Scraper) appendPage(collection models.Collection, known models.KeySet, fresh []models.CandidateRecord, batch enricher.Batch) (models.Collection, int, int) {
	var added, failures int
	for _, c := range fresh {
		failed := batch.Failed(c.URL)
		if failed {
			failures++
			if s.crawl.MarkKnownOnSuccess {
				continue
			}
		}

		rec, dropped := merge.Merge(c, batch.Detail(c.URL))
		if len(dropped) > 0 {
			s.logger.DebugWithFields("Detail fields shadowed by listing fields", map[string]interface{}{
				"url":     c.URL,
				"dropped": dropped,
			})
		}

		collection = append(collection, rec)
		known.Add(c.URL)
		added++
		logger.LogRecordAdded(s.logger, c.URL, c.Title, !failed)
	}
	return collection, added, failures
}

func (s *Scraper) startRunState(total int) *checkpoint.RunState {
	if s.checkpoint == nil {
		return nil
	}
	state, err := s.checkpoint.Create(s.source, s.store.Location(), s.crawl.StartPage, total)
	if err != nil {
		s.logger.WithError(err).Warn("Run state disabled")
		return nil
	}
	return state
}

func (s *Scraper) recordPage(state *checkpoint.RunState, p checkpoint.PageProgress) {
	if state == nil {
		return
	}
	if err := s.checkpoint.RecordPage(state, p); err != nil {
		s.logger.WithError(err).Warn("Failed to update run state")
	}
}

func (s *Scraper) finishRunState(state *checkpoint.RunState, reason string) {
	if state == nil {
		return
	}

	var err error
	switch reason {
	case StopCancelled, StopPersist:
		err = s.checkpoint.Interrupt(state, reason)
	default:
		err = s.checkpoint.Finish(state, reason)
	}
	if err != nil {
		s.logger.WithError(err).Warn("Failed to finish run state")
	}
}
