package page

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"MeasureInGoods/internal/collector"
	"MeasureInGoods/internal/recorder"
)

// DefaultIdleTTL is how long an untouched page is kept.
const DefaultIdleTTL = 30 * time.Minute

// DefaultMaxPages caps the live pages; the least recently used go first.
const DefaultMaxPages = 1000

// Registry keeps the live page instances, each issued to one visitor.
type Registry struct {
	fetcher  collector.Fetcher
	recorder recorder.Recorder
	timeout  time.Duration
	ttl      time.Duration

	mu    sync.Mutex
	limit int
	pages map[string]*Page
}

// NewRegistry creates a registry whose pages load through fetcher.
func NewRegistry(fetcher collector.Fetcher, rec recorder.Recorder, timeout, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &Registry{
		fetcher:  fetcher,
		recorder: rec,
		timeout:  timeout,
		ttl:      ttl,
		limit:    DefaultMaxPages,
		pages:    make(map[string]*Page),
	}
}

// SetLimit changes the page cap. n <= 0 restores the default.
func (r *Registry) SetLimit(n int) {
	if n <= 0 {
		n = DefaultMaxPages
	}
	r.mu.Lock()
	r.limit = n
	r.mu.Unlock()
}

// Get returns page id if it was issued to owner. An unknown id, or one
// issued to another visitor, yields a fresh page under a new id.
func (r *Registry) Get(id, owner string) *Page {
	r.mu.Lock()
	if p, ok := r.pages[id]; ok && p.Owner == owner {
		r.mu.Unlock()
		return p
	}
	p := r.newPage(uuid.NewString())
	p.Owner = owner
	r.pages[p.ID] = p
	evicted := r.overflow()
	r.mu.Unlock()

	for _, old := range evicted {
		old.Close()
	}
	return p
}

// Transient returns an unregistered page for a single request. The caller
// closes it.
func (r *Registry) Transient() *Page {
	return r.newPage("")
}

func (r *Registry) newPage(id string) *Page {
	return New(id, collector.NewLoader(r.fetcher, r.recorder, r.timeout))
}

// overflow drops the least recently used pages beyond the limit. Callers
// hold mu.
func (r *Registry) overflow() []*Page {
	var evicted []*Page
	for len(r.pages) > r.limit {
		var oldest *Page
		var oldestAt time.Time
		for _, p := range r.pages {
			if at := p.idleSince(); oldest == nil || at.Before(oldestAt) {
				oldest, oldestAt = p, at
			}
		}
		delete(r.pages, oldest.ID)
		evicted = append(evicted, oldest)
	}
	return evicted
}

// Sweep closes and drops pages idle since before now-ttl.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.ttl)
	r.mu.Lock()
	var stale []*Page
	for id, p := range r.pages {
		if p.idleSince().Before(cutoff) {
			stale = append(stale, p)
			delete(r.pages, id)
		}
	}
	r.mu.Unlock()

	for _, p := range stale {
		p.Close()
	}
	if len(stale) > 0 {
		log.Printf("[INFO] evicted %d idle pages", len(stale))
	}
	return len(stale)
}

// Len is the number of live pages.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// Close tears down every page.
func (r *Registry) Close() {
	r.mu.Lock()
	pages := r.pages
	r.pages = make(map[string]*Page)
	r.mu.Unlock()
	for _, p := range pages {
		p.Close()
	}
}
