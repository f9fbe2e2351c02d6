package catalog

import (
	"fmt"
	"net/url"
	"strings"

	"catalogscraper/pkg/config"
)

const (
	// DefaultBaseURL is the catalog host crawled when none is configured
	DefaultBaseURL = "https://hurawatchzz.tv"

	// DefaultListingPath is the ranked listing walked page by page
	DefaultListingPath = "/top-imdb"

	// DefaultListingQuery selects every entry kind on the listing
	DefaultListingQuery = "type=all"
)

// Endpoints builds listing and detail URLs for one catalog host
type Endpoints struct {
	BaseURL      string
	ListingPath  string
	ListingQuery string
}

// NewEndpoints derives endpoints from the source configuration, filling gaps with defaults
func NewEndpoints(cfg config.SourceConfig) Endpoints {
	e := Endpoints{
		BaseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		ListingPath:  cfg.ListingPath,
		ListingQuery: cfg.ListingQuery,
	}
	if e.BaseURL == "" {
		e.BaseURL = DefaultBaseURL
	}
	if e.ListingPath == "" {
		e.ListingPath = DefaultListingPath
	}
	if !strings.HasPrefix(e.ListingPath, "/") {
		e.ListingPath = "/" + e.ListingPath
	}
	return e
}

// ListingURL returns the URL of listing page index (1-based). The configured
// query is kept verbatim and the page parameter is appended last.
func (e Endpoints) ListingURL(page int) string {
	query := strings.Trim(e.ListingQuery, "?&")
	if query == "" {
		return fmt.Sprintf("%s%s?page=%d", e.BaseURL, e.ListingPath, page)
	}
	return fmt.Sprintf("%s%s?%s&page=%d", e.BaseURL, e.ListingPath, query, page)
}

// ResolveLocator turns a card href into the canonical locator.
// Site-relative hrefs are prefixed with the base URL; absolute ones are kept.
func (e Endpoints) ResolveLocator(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if u, err := url.Parse(href); err == nil && u.IsAbs() {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return e.BaseURL + href
}
