package recorder

import "time"

// Fetch outcomes.
const (
	OutcomeLoaded     = "loaded"
	OutcomeError      = "error"
	OutcomeSuperseded = "superseded"
)

// FetchEvent describes one upstream series request.
type FetchEvent struct {
	RequestID  string
	Path       string
	Outcome    string // loaded, error or superseded
	StatusCode int    // 0 when no response was received
	Points     int
	Duration   time.Duration
	Err        string
}

// CatalogRefreshEvent records where the capability catalog came from.
type CatalogRefreshEvent struct {
	Source string // "api", "fallback" or "file"
	Assets int
	Err    string
}

// Recorder persists fetch history for later analysis.
type Recorder interface {
	RecordFetch(evt *FetchEvent) error
	RecordCatalogRefresh(evt *CatalogRefreshEvent) error
	Close() error
}
