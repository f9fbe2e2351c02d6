package scraper

import "time"

// State is a step of the per-page crawl cycle
type State int32

const (
	StateIdle State = iota
	StatePaging
	StateDraining
	StatePersisting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePaging:
		return "paging"
	case StateDraining:
		return "draining"
	case StatePersisting:
		return "persisting"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Reasons a walk stops
const (
	StopExhausted  = "exhausted"
	StopPageFailed = "page_failed"
	StopMaxPages   = "max_pages"
	StopCancelled  = "cancelled"
	StopPersist    = "persist_failed"
)

// Summary describes a finished run
type Summary struct {
	PagesVisited   int
	LastPage       int
	Added          int
	Skipped        int
	EnrichFailures int
	Total          int
	StopReason     string
	Duration       time.Duration
}
