// Package enricher fetches detail pages for a page's worth of new
// candidates with bounded concurrency.
//
// EnrichBatch is a barrier: it returns only after every fetch in the batch
// has finished, with results keyed by locator so callers keep listing order.
// A failed, timed out or panicking fetch becomes an empty detail record for
// that locator and never affects the rest of the batch.
package enricher
