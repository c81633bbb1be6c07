package page

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MeasureInGoods/internal/catalog"
	"MeasureInGoods/internal/collector"
	"MeasureInGoods/internal/model"
)

var canvas = model.Size{Width: 640, Height: 320}

func daily(n int, from time.Time) *model.Series {
	pts := make([]model.Observation, n)
	for i := range pts {
		d := from.AddDate(0, 0, i)
		pts[i] = model.Observation{Timestamp: d.Format("2006-01-02"), Date: d, Value: float64(i%50 + 1)}
	}
	return &model.Series{Name: "test", Points: pts}
}

func newPage(m *collector.MockFetcher) *Page {
	return New("p1", collector.NewLoader(m, nil, time.Second))
}

func sel(asset, unit, rng string) model.SelectionState {
	w, _ := model.LookupWindow(rng)
	return model.SelectionState{Asset: asset, Unit: unit, Range: w}
}

func TestUpdate_LoadsAndFilters(t *testing.T) {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	m := &collector.MockFetcher{Series: map[string]*model.Series{"/ratios/sp500-gold": daily(730, start)}}
	p := newPage(m)

	v := p.Update(context.Background(), catalog.Fallback(), sel("SPX", "gold", "3m"), canvas)
	require.Equal(t, "loaded", v.State())
	assert.Len(t, v.Points, 91)
	assert.False(t, v.Geometry.Empty())
	assert.True(t, v.HasLatest)
	assert.Equal(t, "2023-12-31", v.Latest.Timestamp)
	require.NotNil(t, v.Summary)
	assert.LessOrEqual(t, v.Summary.Low, v.Latest.Value)
	assert.Empty(t, v.Message)

	// Same resource, different window: no refetch.
	v = p.Update(context.Background(), catalog.Fallback(), sel("SPX", "gold", "max"), canvas)
	assert.Len(t, v.Points, 730)
	assert.Len(t, m.Calls(), 1)
}

func TestUpdate_404ReplacesStaleData(t *testing.T) {
	m := &collector.MockFetcher{Series: map[string]*model.Series{
		"/ratios/sp500-gold": daily(10, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}}
	p := newPage(m)
	p.Update(context.Background(), catalog.Fallback(), sel("SPX", "gold", "max"), canvas)

	v := p.Update(context.Background(), catalog.Fallback(), sel("SPX", "chf", "max"), canvas)
	assert.Equal(t, "error", v.State())
	assert.True(t, v.IsError())
	assert.Contains(t, v.Message, "404")
	assert.Nil(t, v.Series)
	assert.Empty(t, v.Points)
	assert.True(t, v.Geometry.Empty())
}

func TestUpdate_UnsupportedMakesNoRequest(t *testing.T) {
	caps := &model.Capabilities{Assets: []model.AssetCapability{{
		ID: "BTC", Label: "Bitcoin", Units: []model.UnitCapability{{ID: "rice", Label: "Rice"}},
	}}}
	m := &collector.MockFetcher{}
	p := newPage(m)

	v := p.Update(context.Background(), caps, sel("BTC", "rice", "max"), canvas)
	assert.Equal(t, "error", v.State())
	assert.Equal(t, "Pricing Bitcoin in Rice is not available yet.", v.Message)
	assert.Empty(t, m.Calls())
}

func TestUpdate_IdleStates(t *testing.T) {
	m := &collector.MockFetcher{}
	p := newPage(m)

	v := p.Update(context.Background(), catalog.Fallback(), sel("SPX", model.CustomUnitID, "max"), canvas)
	assert.Equal(t, "idle", v.State())
	assert.Equal(t, catalog.MsgBuildBasket, v.Message)

	v = p.Update(context.Background(), &model.Capabilities{}, model.SelectionState{}, canvas)
	assert.Equal(t, catalog.MsgChooseAsset, v.Message)
	assert.Empty(t, m.Calls())
}

func TestUpdate_EmptySeries(t *testing.T) {
	m := &collector.MockFetcher{Series: map[string]*model.Series{"/ratios/sp500-usd": {Name: "empty"}}}
	p := newPage(m)

	v := p.Update(context.Background(), catalog.Fallback(), sel("SPX", "usd", "max"), canvas)
	assert.Equal(t, "loaded", v.State())
	assert.Equal(t, catalog.MsgNoData, v.Message)
	assert.False(t, v.HasLatest)
}

func TestUpdate_DateBounds(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := &collector.MockFetcher{Series: map[string]*model.Series{"/ratios/sp500-gold": daily(60, start)}}
	p := newPage(m)

	s := sel("SPX", "gold", "max")
	s.Start = start.AddDate(0, 0, 10)
	s.End = start.AddDate(0, 0, 19)
	v := p.Update(context.Background(), catalog.Fallback(), s, canvas)
	require.Len(t, v.Points, 10)
	assert.Equal(t, "2024-01-11", v.Points[0].Timestamp)
	assert.Equal(t, "2024-01-20", v.Latest.Timestamp)
}

func TestHover_Idempotent(t *testing.T) {
	m := &collector.MockFetcher{Series: map[string]*model.Series{
		"/ratios/gold-usd": daily(30, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}}
	p := newPage(m)
	p.Update(context.Background(), catalog.Fallback(), sel("GOLD", "usd", "max"), canvas)

	_, i1, ok1 := p.Hover(200, canvas)
	_, i2, ok2 := p.Hover(200, canvas)
	require.True(t, ok1 && ok2)
	assert.Equal(t, i1, i2)

	empty := newPage(&collector.MockFetcher{})
	_, _, ok := empty.Hover(10, canvas)
	assert.False(t, ok)
}

func TestUpdate_ConcurrentSelectionsStayConsistent(t *testing.T) {
	pts := daily(5, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Points
	m := &collector.MockFetcher{
		Series: map[string]*model.Series{
			"/ratios/sp500-gold": {ID: "gold", Points: pts},
			"/ratios/sp500-usd":  {ID: "usd", Points: pts},
		},
		Delays: map[string]time.Duration{
			"/ratios/sp500-gold": time.Microsecond,
			"/ratios/sp500-usd":  time.Microsecond,
		},
	}
	caps := catalog.Fallback()

	for i := 0; i < 300; i++ {
		p := newPage(m)
		var wg sync.WaitGroup
		for _, unit := range []string{"gold", "usd"} {
			wg.Add(1)
			go func(unit string) {
				defer wg.Done()
				v := p.Update(context.Background(), caps, sel("SPX", unit, "max"), canvas)
				assert.Equal(t, unit, v.Selection.Unit)
				if v.Series != nil {
					assert.Equal(t, unit, v.Series.ID, "view of %s shows another selection's series", unit)
				}
			}(unit)
		}
		wg.Wait()

		v := p.View(canvas)
		if v.Series != nil {
			assert.Equal(t, v.Selection.Unit, v.Series.ID)
		}
		// Asking again for either selection yields its own series.
		for _, unit := range []string{"gold", "usd"} {
			v := p.Update(context.Background(), caps, sel("SPX", unit, "max"), canvas)
			require.NotNil(t, v.Series)
			assert.Equal(t, unit, v.Series.ID)
		}
		p.Close()
		if t.Failed() {
			t.Fatalf("inconsistent page after iteration %d", i)
		}
	}
}

func TestUpdate_BasketRatioLegs(t *testing.T) {
	s := sel("SPX", model.CustomUnitID, "max")
	s.Basket = []model.BasketItem{{ID: "gold", Weight: 1}}
	path := catalog.BasketQueryPath("SPX", s)

	m := &collector.MockFetcher{Series: map[string]*model.Series{path: {
		Name: "SPX in basket",
		Numerator: &model.Series{Points: []model.Observation{
			{Timestamp: "2023-01-31", Date: time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), Value: 4000},
			{Timestamp: "2023-02-28", Date: time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), Value: 4100},
		}},
		Denominator: &model.Series{Points: []model.Observation{
			{Timestamp: "2023-01-31", Date: time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC), Value: 2000},
			{Timestamp: "2023-02-28", Date: time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC), Value: 2050},
		}},
	}}}
	p := newPage(m)

	v := p.Update(context.Background(), catalog.Fallback(), s, canvas)
	require.Equal(t, "loaded", v.State())
	require.Len(t, v.Points, 2)
	assert.Equal(t, 2.0, v.Points[0].Value)
	assert.Equal(t, 2.0, v.Points[1].Value)
	assert.False(t, v.Geometry.Empty())
}
