package logger

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogscraper/pkg/config"
)

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zlog := zerolog.New(buf).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	return &zerologLogger{logger: &zlog, fields: make(map[string]interface{})}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{"info level", &config.LoggingConfig{Level: "info"}, false},
		{"debug level json", &config.LoggingConfig{Level: "debug", Format: "json"}, false},
		{"invalid log level", &config.LoggingConfig{Level: "invalid"}, true},
		{"file output", &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "run.log")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.WithField("page", 4).Warn("Listing fetch failed")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"page":4`)
	assert.Contains(t, out, `"app":"catalogscraper"`)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			assert.Equal(t, tt.wantErr, err != nil)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.
		WithField("page", 2).
		WithFields(map[string]interface{}{"url": "https://example.test/watch-a-1", "enriched": true}).
		Info("Record added")

	out := buf.String()
	assert.Contains(t, out, "Record added")
	assert.Contains(t, out, `"page":2`)
	assert.Contains(t, out, `"enriched":true`)
	assert.Contains(t, out, `"url":"https://example.test/watch-a-1"`)
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	_ = logger.WithField("child", "yes")
	logger.Info("parent")

	assert.NotContains(t, buf.String(), "child")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	assert.Same(t, logger, logger.WithError(nil))

	logger.WithError(errors.New("connection refused")).Error("fetch failed")
	assert.Contains(t, buf.String(), "connection refused")
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.InfoWithFields("all types", map[string]interface{}{
		"string":   "x",
		"int64":    int64(456),
		"float":    3.5,
		"time":     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"duration": 2 * time.Second,
		"strings":  []string{"a", "b"},
		"err":      errors.New("inner"),
		"custom":   struct{ Name string }{Name: "n"},
	})

	out := buf.String()
	assert.Contains(t, out, `"strings":["a","b"]`)
	assert.Contains(t, out, `"err":"inner"`)
	assert.Contains(t, out, `"custom":{"Name":"n"}`)
}

func TestHelpersWithTestLogger(t *testing.T) {
	tl := NewTestLogger()

	LogPage(tl, 3, 20, 5, 15)
	LogEnrichment(tl, "https://example.test/watch-b-2", time.Millisecond, errors.New("timeout"))
	LogEnrichment(tl, "https://example.test/watch-b-3", time.Millisecond, nil)
	LogComponentStart(tl, "enricher", map[string]interface{}{"workers": 10})

	pages := tl.GetMessagesByLevel("INFO")
	require.NotEmpty(t, pages)
	assert.Equal(t, "Page processed", pages[0].Message)
	assert.Equal(t, 5, pages[0].Fields["added"])

	warns := tl.GetMessagesByLevel("WARN")
	require.Len(t, warns, 1)
	assert.EqualError(t, warns[0].Error, "timeout")
	assert.Equal(t, "https://example.test/watch-b-2", warns[0].Fields["url"])

	assert.True(t, tl.HasMessage("Detail fetched"))
	assert.Equal(t, 1, tl.CountMessage("Component started"))
}

func TestTestLoggerSharesSink(t *testing.T) {
	tl := NewTestLogger()
	child := tl.WithField("component", "walker").WithError(errors.New("x"))
	child.Warn("child message")

	msgs := tl.GetMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "walker", msgs[0].Fields["component"])
	assert.Error(t, msgs[0].Error)
	assert.True(t, strings.Contains(tl.String(), "[WARN] child message"))

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}

func TestNopLogger(t *testing.T) {
	n := NewNopLogger()
	n.WithField("a", 1).WithError(errors.New("b")).Info("nothing")
	assert.NotNil(t, n.GetZerolog())
}
