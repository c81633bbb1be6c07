package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MeasureInGoods/internal/model"
	"MeasureInGoods/internal/recorder"
)

// gatedFetcher ignores cancellation and answers each path once its gate opens.
type gatedFetcher struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	started chan string
}

func newGatedFetcher(paths ...string) *gatedFetcher {
	g := &gatedFetcher{gates: make(map[string]chan struct{}), started: make(chan string, len(paths))}
	for _, p := range paths {
		g.gates[p] = make(chan struct{})
	}
	return g
}

func (g *gatedFetcher) Name() string { return "gated" }

func (g *gatedFetcher) FetchSeries(_ context.Context, path, name string) (*model.Series, error) {
	g.mu.Lock()
	gate := g.gates[path]
	g.mu.Unlock()
	g.started <- path
	<-gate
	return &model.Series{ID: path, Name: name, Points: []model.Observation{{Timestamp: "2024-01-01", Value: 1}}}, nil
}

func (g *gatedFetcher) FetchCapabilities(context.Context) (*model.Capabilities, error) {
	return &model.Capabilities{}, nil
}

func (g *gatedFetcher) open(path string) { close(g.gates[path]) }

type memRecorder struct {
	recorder.NoopRecorder
	mu     sync.Mutex
	events []recorder.FetchEvent
}

func (m *memRecorder) RecordFetch(evt *recorder.FetchEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *evt)
	return nil
}

func (m *memRecorder) outcomes() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.events))
	for _, e := range m.events {
		out[e.Path] = e.Outcome
	}
	return out
}

func TestLoader_LatestSelectionWins(t *testing.T) {
	f := newGatedFetcher("/ratios/spx-gold", "/ratios/spy-gold")
	rec := &memRecorder{}
	l := NewLoader(f, rec, time.Second)

	firstDone := make(chan bool, 1)
	go func() {
		_, applied := l.Load(context.Background(), Request{Path: "/ratios/spx-gold", Name: "first"})
		firstDone <- applied
	}()
	require.Equal(t, "/ratios/spx-gold", <-f.started)

	secondDone := make(chan model.LoadStatus, 1)
	go func() {
		st, applied := l.Load(context.Background(), Request{Path: "/ratios/spy-gold", Name: "second"})
		assert.True(t, applied)
		secondDone <- st
	}()
	require.Equal(t, "/ratios/spy-gold", <-f.started)

	// The second request resolves first, the stale one afterwards.
	f.open("/ratios/spy-gold")
	st := <-secondDone
	f.open("/ratios/spx-gold")
	assert.False(t, <-firstDone, "stale response must not be applied")

	loaded, ok := l.Status().(model.Loaded)
	require.True(t, ok, "expected loaded status, got %#v", l.Status())
	assert.Equal(t, "second", loaded.Series().Name)
	assert.Equal(t, st, l.Status())
	_, path := l.Current()
	assert.Equal(t, "/ratios/spy-gold", path, "status must stay tied to the winning request")

	outcomes := rec.outcomes()
	assert.Equal(t, recorder.OutcomeSuperseded, outcomes["/ratios/spx-gold"])
	assert.Equal(t, recorder.OutcomeLoaded, outcomes["/ratios/spy-gold"])
}

func TestLoader_SupersedeCancelsInFlight(t *testing.T) {
	m := &MockFetcher{
		Series: map[string]*model.Series{
			"/slow": {Name: "slow"},
			"/fast": {Name: "fast"},
		},
		Delays: map[string]time.Duration{"/slow": 10 * time.Second},
	}
	l := NewLoader(m, nil, 30*time.Second)

	done := make(chan time.Duration, 1)
	go func() {
		start := time.Now()
		l.Load(context.Background(), Request{Path: "/slow"})
		done <- time.Since(start)
	}()
	require.Eventually(t, func() bool { return len(m.Calls()) == 1 }, time.Second, 5*time.Millisecond)

	st, applied := l.Load(context.Background(), Request{Path: "/fast"})
	require.True(t, applied)
	assert.Equal(t, "fast", st.(model.Loaded).Series().Name)

	select {
	case d := <-done:
		assert.Less(t, d, 5*time.Second)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded request was not cancelled")
	}
	assert.Equal(t, "fast", l.Status().(model.Loaded).Series().Name)
}

func TestLoader_HTTP404(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	// Seed a loaded status so stale data would be visible if kept.
	l := NewLoader(NewAPIFetcher(srv.URL, "", time.Second), nil, time.Second)
	l.SetStatus(model.NewLoaded(&model.Series{Name: "stale"}))

	st, applied := l.Load(context.Background(), Request{Path: "/ratios/spx-chf"})
	require.True(t, applied)
	assert.Equal(t, "error", model.StatusState(st))
	assert.Contains(t, model.StatusMessage(st), "404")
}

func TestLoader_Timeout(t *testing.T) {
	m := &MockFetcher{
		Series: map[string]*model.Series{"/hang": {}},
		Delays: map[string]time.Duration{"/hang": time.Minute},
	}
	l := NewLoader(m, nil, 20*time.Millisecond)

	st, applied := l.Load(context.Background(), Request{Path: "/hang"})
	require.True(t, applied)
	failed, ok := st.(model.Failed)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(failed.Message, "Request timed out"), failed.Message)
}

func TestLoader_LoadingStatusVisible(t *testing.T) {
	f := newGatedFetcher("/p")
	l := NewLoader(f, nil, time.Second)

	done := make(chan struct{})
	go func() {
		l.Load(context.Background(), Request{Path: "/p", LoadingMessage: "Loading Gold priced in US Dollar…"})
		close(done)
	}()
	<-f.started
	assert.Equal(t, model.Loading{Message: "Loading Gold priced in US Dollar…"}, l.Status())
	f.open("/p")
	<-done
	assert.Equal(t, "loaded", model.StatusState(l.Status()))
}

func TestLoader_CloseIgnoresLaterLoads(t *testing.T) {
	m := &MockFetcher{Generate: true, Days: 10}
	l := NewLoader(m, nil, time.Second)
	l.Close()

	st, applied := l.Load(context.Background(), Request{Path: "/ratios/gold-usd"})
	assert.False(t, applied)
	assert.Equal(t, "idle", model.StatusState(st))
	assert.Empty(t, m.Calls())
}

func TestLoader_CurrentTracksRequestPath(t *testing.T) {
	m := &MockFetcher{Series: map[string]*model.Series{"/a": {Name: "a"}}}
	l := NewLoader(m, nil, time.Second)

	_, path := l.Current()
	assert.Empty(t, path)

	l.Load(context.Background(), Request{Path: "/a"})
	st, path := l.Current()
	assert.Equal(t, "/a", path)
	assert.Equal(t, "loaded", model.StatusState(st))

	l.Load(context.Background(), Request{Path: "/missing"})
	st, path = l.Current()
	assert.Equal(t, "/missing", path)
	assert.Equal(t, "error", model.StatusState(st))

	l.SetStatus(model.Idle{Message: "Choose an asset to begin."})
	_, path = l.Current()
	assert.Empty(t, path)
}
