package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"catalogscraper/pkg/config"
	errs "catalogscraper/pkg/errors"
	"catalogscraper/pkg/logger"
	"catalogscraper/pkg/models"
)

// maxDocumentSize caps how much of a response body is parsed
const maxDocumentSize = 8 << 20

// Client fetches listing and detail pages from the catalog host
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	endpoints  Endpoints
	metrics    MetricSource
	logger     logger.Logger
}

// NewClient creates a catalog client from the source configuration
func NewClient(cfg config.SourceConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	headers := map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
		"Cache-Control":   "no-cache",
	}
	if cfg.UserAgent != "" {
		headers["User-Agent"] = cfg.UserAgent
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		headers:    headers,
		endpoints:  NewEndpoints(cfg),
		metrics:    RandomMetrics,
		logger:     log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetMetricSource replaces the generator of synthetic card metrics
func (c *Client) SetMetricSource(m MetricSource) {
	c.metrics = m
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// Endpoints returns the URL builder used by the client
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "%s %s", req.Method, req.URL.String())
	}

	logger.LogRequest(c.logger, req.Method, req.URL.String(), resp.StatusCode, duration)
	return resp, nil
}

// checkResponseStatus maps non-2xx statuses to typed errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	errType := errs.TypeForStatus(resp.StatusCode)
	msg := fmt.Sprintf("unexpected status %d for %s", resp.StatusCode, resp.Request.URL.String())
	switch errType {
	case errs.ErrorTypeNotFound:
		msg = "page not found: " + resp.Request.URL.String()
	case errs.ErrorTypeRateLimit:
		msg = "rate limit exceeded"
	case errs.ErrorTypeBlocked:
		msg = "request blocked by the catalog host"
	case errs.ErrorTypeServerError:
		msg = "catalog host server error"
	}

	return errs.New(errType, resp.StatusCode, msg)
}

// GetDocument fetches url and parses it as HTML, decoding legacy charsets to UTF-8
func (c *Client) GetDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, err, "build request")
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: "failed to read response body",
			Code:    resp.StatusCode,
			Err:     err,
		}
	}

	doc, err := parseHTML(data, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: "failed to parse HTML",
			Code:    resp.StatusCode,
			Err:     err,
		}
	}
	return doc, nil
}

func parseHTML(data []byte, contentType string) (*goquery.Document, error) {
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		if !utf8.Valid(data) {
			return nil, err
		}
		utf8data = data
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(utf8data))
}

// FetchListing fetches listing page index and extracts its candidates.
// An empty slice with a nil error means the catalog is exhausted.
func (c *Client) FetchListing(ctx context.Context, page int) ([]models.CandidateRecord, error) {
	url := c.endpoints.ListingURL(page)

	doc, err := c.GetDocument(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("listing page %d: %w", page, err)
	}

	candidates := ParseListing(doc, c.endpoints, c.metrics)
	c.logger.DebugWithFields("listing parsed", map[string]interface{}{
		"page":       page,
		"url":        url,
		"candidates": len(candidates),
	})
	return candidates, nil
}

// FetchDetail fetches the detail page of locator and extracts its fields
func (c *Client) FetchDetail(ctx context.Context, locator string) (models.DetailRecord, error) {
	doc, err := c.GetDocument(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("detail %s: %w", locator, err)
	}
	return ParseDetail(doc), nil
}
