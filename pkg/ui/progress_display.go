package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ProgressDisplay prints a one-line crawl status that is rewritten after
// every persisted page
type ProgressDisplay struct {
	mu        sync.Mutex
	source    string
	page      int
	pages     int
	added     int
	skipped   int
	failures  int
	total     int
	startTime time.Time
	isDebug   bool
	now       func() time.Time
}

// NewProgressDisplay creates a display for a crawl of source that starts
// with known records already stored
func NewProgressDisplay(source string, known int, debug bool) *ProgressDisplay {
	return &ProgressDisplay{
		source:    source,
		total:     known,
		startTime: time.Now(),
		isDebug:   debug,
		now:       time.Now,
	}
}

// PageStarted notes that a listing page is being fetched
func (p *ProgressDisplay) PageStarted(page int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.page = page
	if quietMode {
		return
	}
	if p.isDebug {
		fmt.Fprintf(output, "\n%s Scanning page %d...\n", Magenta("→"), page)
	}
}

// PagePersisted folds a persisted page into the totals and redraws
func (p *ProgressDisplay) PagePersisted(page, added, skipped, failures, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.page = page
	p.pages++
	p.added += added
	p.skipped += skipped
	p.failures += failures
	p.total = total

	if quietMode {
		return
	}
	if p.isDebug {
		fmt.Fprintf(output, "%s page %d • +%d new • %d known • %d stored\n",
			Green("✓"), page, added, skipped, total)
		return
	}
	p.printProgress()
}

// printProgress prints the minimal progress line
func (p *ProgressDisplay) printProgress() {
	elapsed := p.now().Sub(p.startTime)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.added) / elapsed.Minutes()
	}

	line := fmt.Sprintf("%s page %d • +%d new • %d stored • %.1f/min",
		Cyan(p.source),
		p.page,
		p.added,
		p.total,
		rate,
	)
	if p.failures > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d without details", p.failures)))
	}

	fmt.Fprintf(output, "\r%s\r%s", strings.Repeat(" ", 100), line)
}

// Complete prints the run summary
func (p *ProgressDisplay) Complete(stopReason string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if quietMode {
		return
	}

	elapsed := p.now().Sub(p.startTime)
	fmt.Fprintf(output, "\n\n%s Added %d records from %s\n",
		Green("✓"),
		p.added,
		p.source,
	)
	fmt.Fprintf(output, "  %s %d pages in %s, %d records stored\n",
		Dim("•"),
		p.pages,
		formatDuration(elapsed),
		p.total,
	)
	if p.skipped > 0 {
		fmt.Fprintf(output, "  %s %d already known\n", Dim("•"), p.skipped)
	}
	if p.failures > 0 {
		fmt.Fprintf(output, "  %s %d detail fetches failed\n", Dim("•"), p.failures)
	}
	if stopReason != "" {
		fmt.Fprintf(output, "  %s stopped: %s\n", Dim("•"), stopReason)
	}
}

// Added returns the number of records added so far
func (p *ProgressDisplay) Added() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.added
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
