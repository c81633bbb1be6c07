package collector

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"MeasureInGoods/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Paths missing from Series answer 404 unless Generate is set, in which
// case a deterministic synthetic series is produced.
type MockFetcher struct {
	Series       map[string]*model.Series
	Capabilities *model.Capabilities
	Delays       map[string]time.Duration
	Err          error
	Generate     bool
	Days         int

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(ctx context.Context, path, name string) (*model.Series, error) {
	m.mu.Lock()
	m.calls = append(m.calls, path)
	delay := m.Delays[path]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if s, ok := m.Series[path]; ok {
		cp := *s
		cp.Points = append([]model.Observation(nil), s.Points...)
		return &cp, nil
	}
	if m.Generate {
		days := m.Days
		if days <= 0 {
			days = 730
		}
		return generateMockSeries(path, name, days), nil
	}
	return nil, &StatusError{Code: 404, Body: `{"detail":"Not Found"}`}
}

func (m *MockFetcher) FetchCapabilities(ctx context.Context) (*model.Capabilities, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Capabilities == nil {
		return nil, &StatusError{Code: 404}
	}
	return m.Capabilities, nil
}

// Calls returns the requested paths in order.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// generateMockSeries draws a smooth daily series seeded by path so each
// resource looks different but stays stable across requests.
func generateMockSeries(path, name string, days int) *model.Series {
	h := fnv.New32a()
	h.Write([]byte(path))
	seed := float64(h.Sum32()%1000) / 1000

	end := time.Now().UTC().Truncate(24 * time.Hour)
	base := 1 + seed*4
	pts := make([]model.Observation, days)
	for i := 0; i < days; i++ {
		d := end.AddDate(0, 0, i-days+1)
		t := float64(i) / 30
		v := base * (1 + 0.15*math.Sin(t+seed*6) + 0.05*math.Sin(t*3.7) + 0.0004*float64(i))
		pts[i] = model.Observation{Timestamp: d.Format("2006-01-02"), Date: d, Value: v}
	}
	return &model.Series{ID: path, Name: name, Points: pts}
}
