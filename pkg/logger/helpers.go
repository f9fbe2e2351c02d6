package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

func orGlobal(l Logger) Logger {
	if l == nil {
		return GetLogger()
	}
	return l
}

// LogRequest logs a completed catalog request
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration":    duration,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		orGlobal(l).DebugWithFields("HTTP request completed", fields)
	case statusCode >= 400 && statusCode < 500:
		orGlobal(l).WarnWithFields("HTTP request client error", fields)
	case statusCode >= 500:
		orGlobal(l).ErrorWithFields("HTTP request server error", fields)
	}
}

// LogPage logs the outcome of one listing page
func LogPage(l Logger, page, candidates, added, skipped int) {
	orGlobal(l).WithFields(map[string]interface{}{
		"page":       page,
		"candidates": candidates,
		"added":      added,
		"skipped":    skipped,
	}).Info("Page processed")
}

// LogRecordAdded logs a record appended to the collection
func LogRecordAdded(l Logger, locator, title string, enriched bool) {
	orGlobal(l).WithFields(map[string]interface{}{
		"url":      locator,
		"title":    title,
		"enriched": enriched,
	}).Info("Record added")
}

// LogEnrichment logs a detail fetch
func LogEnrichment(l Logger, locator string, duration time.Duration, err error) {
	entry := orGlobal(l).WithFields(map[string]interface{}{
		"url":      locator,
		"duration": duration,
	})
	if err != nil {
		entry.WithError(err).Warn("Detail fetch failed, keeping listing fields")
		return
	}
	entry.Debug("Detail fetched")
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, config map[string]interface{}) {
	entry := orGlobal(l).WithField("component", component)
	if len(config) > 0 {
		entry = entry.WithFields(config)
	}
	entry.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(l Logger, component string, reason string) {
	orGlobal(l).WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// LogMetrics logs summary counters for an operation
func LogMetrics(l Logger, operation string, metrics map[string]interface{}) {
	fields := map[string]interface{}{
		"operation": operation,
		"type":      "metrics",
	}
	for k, v := range metrics {
		fields[k] = v
	}
	orGlobal(l).InfoWithFields("Run metrics", fields)
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { nop := zerolog.Nop(); return &nop }
