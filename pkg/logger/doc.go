// Package logger provides the structured logging interface used across the
// catalog scraper.
//
// It wraps zerolog with a small Logger interface so components can be handed
// a real logger, a no-op logger or a TestLogger that captures messages.
//
// Basic Usage:
//
//	log, err := logger.New(&cfg.Logging)
//	log.WithField("page", 3).Info("Page processed")
//	log.WithError(err).Warn("Detail fetch failed, keeping listing fields")
//
// Console output is colored text unless Format is "json". When File is set
// the same events are appended to that file as JSON lines.
//
// The Log* helpers emit the events shared by the crawl components
// (page outcomes, appended records, detail fetches, component lifecycle).
package logger
