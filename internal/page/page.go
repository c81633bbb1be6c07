// Package page drives one browser page: its selection, its loader and the
// normalize, filter and geometry pipeline behind every render.
package page

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"MeasureInGoods/internal/calculator"
	"MeasureInGoods/internal/catalog"
	"MeasureInGoods/internal/chart"
	"MeasureInGoods/internal/collector"
	"MeasureInGoods/internal/model"
	"MeasureInGoods/internal/telemetry"
)

// MsgTooFewPoints is shown when a single observation remains after filtering.
const MsgTooFewPoints = "Not enough observations in this range to draw a chart."

// Summary describes the visible points.
type Summary struct {
	Low      float64
	High     float64
	Position float64 // latest value within [Low, High]
}

// View is everything the presentation layer draws for one selection.
type View struct {
	Selection  model.SelectionState
	Resolution *catalog.Resolution
	Status     model.LoadStatus
	Series     *model.Series // nil unless loaded
	Points     []model.Observation
	Latest     model.Observation
	HasLatest  bool
	Summary    *Summary
	Geometry   *chart.Geometry
	Message    string
}

// State is the LoadStatus wire name.
func (v *View) State() string { return model.StatusState(v.Status) }

// IsError reports whether the status is a failure.
func (v *View) IsError() bool {
	_, ok := v.Status.(model.Failed)
	return ok
}

// Page owns the selection and loader of one page instance.
type Page struct {
	ID     string
	Owner  string // visitor the page was issued to
	loader *collector.Loader

	mu       sync.Mutex
	sel      model.SelectionState
	res      *catalog.Resolution
	local    model.LoadStatus // status of a selection that needs no request
	lastUsed time.Time
}

// New creates a page around loader.
func New(id string, loader *collector.Loader) *Page {
	return &Page{ID: id, loader: loader, lastUsed: time.Now()}
}

// Update applies sel, loading its series unless the same resource is
// already loaded, and returns the view of sel. A call overtaken by a newer
// one never shows the newer selection's data.
func (p *Page) Update(ctx context.Context, caps *model.Capabilities, sel model.SelectionState, size model.Size) *View {
	ctx, span := telemetry.StartSpan(ctx, "page.update")
	defer span.End()
	span.SetAttributes(
		attribute.String("page.id", p.ID),
		attribute.String("selection.asset", sel.Asset),
		attribute.String("selection.unit", sel.Unit),
	)

	res, err := catalog.Resolve(caps, sel)
	var local model.LoadStatus
	switch {
	case err != nil:
		local = model.Failed{Message: err.Error()}
	case res.Idle != "":
		local = model.Idle{Message: res.Idle}
	}

	p.mu.Lock()
	p.touch()
	p.sel, p.res, p.local = sel, res, local
	p.mu.Unlock()

	if local != nil {
		p.loader.SetStatus(local)
		return render(sel, res, local, size)
	}
	if st, path := p.loader.Current(); path == res.Endpoint && isLoaded(st) {
		return render(sel, res, st, size)
	}

	span.SetAttributes(attribute.String("resource.path", res.Endpoint))
	st, applied := p.loader.Load(ctx, collector.Request{
		Path:           res.Endpoint,
		Name:           res.Title,
		LoadingMessage: res.LoadingMessage(),
	})
	if !applied {
		log.Printf("[INFO] page %s: %s superseded", p.ID, res.Endpoint)
		st = p.statusFor(res)
	}
	return render(sel, res, st, size)
}

// View recomputes the view of the latest selection for size without
// fetching anything.
func (p *Page) View(size model.Size) *View {
	p.mu.Lock()
	sel, res, local := p.sel, p.res, p.local
	p.touch()
	p.mu.Unlock()

	st := local
	if st == nil {
		st = p.statusFor(res)
	}
	return render(sel, res, st, size)
}

// statusFor is the loader status if it belongs to res, else a loading
// status for res.
func (p *Page) statusFor(res *catalog.Resolution) model.LoadStatus {
	st, path := p.loader.Current()
	if res == nil || path == res.Endpoint {
		return st
	}
	return model.Loading{Message: res.LoadingMessage()}
}

func render(sel model.SelectionState, res *catalog.Resolution, status model.LoadStatus, size model.Size) *View {
	v := &View{Selection: sel, Resolution: res, Status: status, Message: model.StatusMessage(status)}

	loaded, ok := status.(model.Loaded)
	if !ok {
		v.Geometry = chart.Build(nil, size)
		return v
	}
	v.Series = loaded.Series()
	v.Points = Pipeline(Points(v.Series), sel)
	v.Geometry = chart.Build(v.Points, size)

	if len(v.Points) > 0 {
		v.Latest = v.Points[len(v.Points)-1]
		v.HasLatest = true
		if low, high, err := calculator.Extent(v.Points); err == nil {
			pos, _ := calculator.Position(v.Latest.Value, low, high)
			v.Summary = &Summary{Low: low, High: high, Position: pos}
		}
	}
	switch len(v.Points) {
	case 0:
		v.Message = catalog.MsgNoData
	case 1:
		v.Message = MsgTooFewPoints
	}
	return v
}

// Hover resolves a pointer offset from the drawing area's left edge.
func (p *Page) Hover(pointerX float64, size model.Size) (model.ChartPoint, int, bool) {
	return p.View(size).Geometry.Nearest(pointerX)
}

// Close cancels any outstanding request.
func (p *Page) Close() { p.loader.Close() }

// Points returns the observations of s. A series delivered as numerator
// and denominator legs is divided on matching dates.
func Points(s *model.Series) []model.Observation {
	if len(s.Points) == 0 && s.Numerator != nil && s.Denominator != nil {
		return calculator.Ratio(s.Numerator.Points, s.Denominator.Points)
	}
	return s.Points
}

// Pipeline clips normalized points to the selection's dates, then its window.
func Pipeline(obs []model.Observation, sel model.SelectionState) []model.Observation {
	obs = calculator.Between(obs, sel.Start, sel.End)
	return calculator.FilterWindow(obs, sel.Range)
}

func (p *Page) touch() { p.lastUsed = time.Now() }

func (p *Page) idleSince() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastUsed
}

func isLoaded(s model.LoadStatus) bool {
	_, ok := s.(model.Loaded)
	return ok
}
