package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevColor, prevQuiet := output, colorEnabled, quietMode
	SetOutput(&buf)
	SetColorEnabled(false)
	SetQuietMode(false)
	t.Cleanup(func() {
		output, colorEnabled, quietMode = prevOut, prevColor, prevQuiet
	})
	return &buf
}

func TestColorize(t *testing.T) {
	captureOutput(t)
	assert.Equal(t, "plain", Cyan("plain"))

	SetColorEnabled(true)
	assert.Equal(t, "\033[31mred\033[0m", Red("red"))
}

func TestPrintHelpers(t *testing.T) {
	buf := captureOutput(t)

	PrintInfo("Store", "imdb.json")
	PrintError("Save failed", errors.New("disk full"))
	PrintWarning("Careful")

	assert.Equal(t, "Store: imdb.json\nSave failed: disk full\nCareful\n", buf.String())
}

func TestQuietModeSuppressesDecoration(t *testing.T) {
	buf := captureOutput(t)
	SetQuietMode(true)

	PrintLogo()
	PrintHighlight("hello")
	assert.Empty(t, buf.String())
	assert.True(t, IsQuietMode())
}

func TestProgressDisplay(t *testing.T) {
	buf := captureOutput(t)

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewProgressDisplay("catalog.test", 5, false)
	p.startTime = start
	p.now = func() time.Time { return start.Add(2 * time.Minute) }

	p.PageStarted(1)
	p.PagePersisted(1, 4, 1, 0, 9)
	p.PagePersisted(2, 2, 0, 1, 11)

	out := buf.String()
	assert.Contains(t, out, "catalog.test page 1 • +4 new • 9 stored • 2.0/min")
	assert.Contains(t, out, "page 2 • +6 new • 11 stored • 3.0/min • 1 without details")
	assert.Equal(t, 6, p.Added())

	buf.Reset()
	p.Complete("exhausted")
	out = buf.String()
	assert.Contains(t, out, "Added 6 records from catalog.test")
	assert.Contains(t, out, "2 pages in 2m0s, 11 records stored")
	assert.Contains(t, out, "1 already known")
	assert.Contains(t, out, "1 detail fetches failed")
	assert.Contains(t, out, "stopped: exhausted")
}

func TestProgressDisplayDebug(t *testing.T) {
	buf := captureOutput(t)

	p := NewProgressDisplay("catalog.test", 0, true)
	p.PageStarted(3)
	p.PagePersisted(3, 1, 2, 0, 1)

	assert.Contains(t, buf.String(), "Scanning page 3...")
	assert.Contains(t, buf.String(), "page 3 • +1 new • 2 known • 1 stored")
}

type recordingSender struct {
	titles   []string
	messages []string
}

func (r *recordingSender) Send(title, message string) error {
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return errors.New("no display")
}

func TestNotifier(t *testing.T) {
	buf := captureOutput(t)
	sender := &recordingSender{}
	n := NewNotifierWithSender(sender)

	n.RunFinished(3, 40, "max_pages")
	n.RunFailed(errors.New("persist page 2: disk full"))

	assert.Equal(t, []string{"CRAWL COMPLETE", "CRAWL FAILED"}, sender.titles)
	assert.Equal(t, "3 new records, 40 stored (max pages)", sender.messages[0])
	assert.Contains(t, buf.String(), "CRAWL FAILED: persist page 2: disk full")
}

func TestNotifierWithoutDesktop(t *testing.T) {
	buf := captureOutput(t)
	NewNotifier(false).RunFinished(0, 0, "")
	assert.Equal(t, "\nCRAWL COMPLETE: 0 new records, 0 stored\n", buf.String())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", formatDuration(45*time.Second))
	assert.Equal(t, "3m5s", formatDuration(3*time.Minute+5*time.Second))
	assert.Equal(t, "2h10m", formatDuration(2*time.Hour+10*time.Minute))
}
