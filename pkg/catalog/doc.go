// Package catalog adapts the remote catalog site to the crawl pipeline.
//
// Client implements the page source (FetchListing) and the detail source
// (FetchDetail). Pages are fetched over HTTP, decoded to UTF-8 with
// x/net/html/charset and parsed with goquery. Transport, status and parse
// failures come back as typed errors from pkg/errors so callers can tell a
// rate limit from a missing page.
//
// Extraction is split from fetching: ParseListing and ParseDetail work on a
// goquery document and can be tested against static HTML.
//
// Listing cards also carry placeholder score, like and dislike values. They
// are drawn from a MetricSource, random by default and fixed in tests.
package catalog
