// Package scraper runs the incremental crawl.
//
// A run loads the stored collection, then processes one listing page at a
// time:
//
//	Idle -> Paging -> Draining -> Persisting -> Paging (next page) ... -> Done
//
// Paging fetches the page and drops candidates whose locator is already
// known. Draining hands the remaining candidates to the detail enricher and
// waits for the whole batch. The merged records are appended in listing
// order and Persisting rewrites the full collection before the page index
// advances and the pacing delay is applied. An empty page ends the walk. A
// failed page also ends it, unless page retries recover it or strict paging
// turns it into ErrPageSource.
//
// Usage:
//
//	store, err := storage.Open(ctx, cfg.Storage, log)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	summary, err := scraper.New(cfg, store, log).Run(ctx)
package scraper
