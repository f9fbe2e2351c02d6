// Package retry provides backoff strategies and a context-aware retry loop
// for transient catalog fetch failures.
//
// Basic usage:
//
//	page, err := retry.DoWithResult(ctx, func(ctx context.Context) (catalog.Listing, error) {
//		return client.FetchListing(ctx, index)
//	}, retry.PageConfig(cfg.Crawl.PageRetries, log))
//
// Errors are classified through the typed errors in pkg/errors. Network,
// rate limit and server errors are retried, each with its own backoff
// (rate limits back off longest). Not found, blocked, parsing and storage
// errors fail immediately. Context cancellation stops both the loop and any
// pending wait.
package retry
