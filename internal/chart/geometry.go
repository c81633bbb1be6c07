// Package chart projects a series into pixel space and renders it as SVG.
package chart

import (
	"fmt"
	"math"
	"strings"
	"time"

	"MeasureInGoods/internal/model"
)

// Margins around the drawing area, in pixels.
const (
	MarginTop    = 16.0
	MarginRight  = 24.0
	MarginBottom = 36.0
	MarginLeft   = 64.0

	minInnerWidth  = 60.0
	minInnerHeight = 40.0

	gridTickCount = 5
	paddingRatio  = 0.08
)

// MinWidth is the narrowest canvas that still leaves a usable drawing area.
const MinWidth = MarginLeft + MarginRight + minInnerWidth

// MinHeight is the shortest canvas that still leaves a usable drawing area.
const MinHeight = MarginTop + MarginBottom + minInnerHeight

// ValueTick is a horizontal gridline.
type ValueTick struct {
	Value float64 `json:"value"`
	Y     float64 `json:"y"`
}

// DateTick is a vertical tick at a data point.
type DateTick struct {
	Timestamp string    `json:"timestamp"`
	Date      time.Time `json:"-"`
	X         float64   `json:"x"`
}

// Geometry is everything needed to draw a line chart.
type Geometry struct {
	Size       model.Size         `json:"size"`
	Points     []model.ChartPoint `json:"points"`
	LinePath   string             `json:"line_path"`
	AreaPath   string             `json:"area_path"`
	ValueTicks []ValueTick        `json:"value_ticks"`
	DateTicks  []DateTick         `json:"date_ticks"`
	Baseline   float64            `json:"baseline"`
	DomainMin  float64            `json:"domain_min"`
	DomainMax  float64            `json:"domain_max"`
}

// Empty reports whether there is nothing to draw.
func (g *Geometry) Empty() bool { return g == nil || len(g.Points) < 2 }

// Build projects obs into a canvas of the given size. Fewer than two
// observations yield an empty geometry.
func Build(obs []model.Observation, size model.Size) *Geometry {
	size = clampSize(size)
	g := &Geometry{Size: size, Baseline: size.Height - MarginBottom}
	if len(obs) < 2 {
		return g
	}

	innerW := size.Width - MarginLeft - MarginRight
	innerH := size.Height - MarginTop - MarginBottom

	low, high := valueExtent(obs)
	pad := padding(low, high)
	g.DomainMin = low - pad
	g.DomainMax = high + pad
	valueSpan := g.DomainMax - g.DomainMin

	t0 := obs[0].Date
	t1 := obs[len(obs)-1].Date
	for _, o := range obs {
		if o.Date.Before(t0) {
			t0 = o.Date
		}
		if o.Date.After(t1) {
			t1 = o.Date
		}
	}
	dateSpan := t1.Sub(t0).Seconds()
	if dateSpan == 0 {
		dateSpan = 1
	}

	scaleX := func(d time.Time) float64 {
		return MarginLeft + d.Sub(t0).Seconds()/dateSpan*innerW
	}
	scaleY := func(v float64) float64 {
		return MarginTop + (1-(v-g.DomainMin)/valueSpan)*innerH
	}

	g.Points = make([]model.ChartPoint, len(obs))
	for i, o := range obs {
		g.Points[i] = model.ChartPoint{Observation: o, X: scaleX(o.Date), Y: scaleY(o.Value)}
	}

	g.LinePath = linePath(g.Points)
	g.AreaPath = areaPath(g.Points, g.Baseline)

	g.ValueTicks = make([]ValueTick, gridTickCount)
	for i := 0; i < gridTickCount; i++ {
		v := g.DomainMin + valueSpan*float64(i)/float64(gridTickCount-1)
		g.ValueTicks[i] = ValueTick{Value: v, Y: scaleY(v)}
	}

	g.DateTicks = dateTicks(g.Points)
	return g
}

func clampSize(size model.Size) model.Size {
	if size.Width < MinWidth || math.IsNaN(size.Width) {
		size.Width = MinWidth
	}
	if size.Height < MinHeight || math.IsNaN(size.Height) {
		size.Height = MinHeight
	}
	return size
}

func valueExtent(obs []model.Observation) (low, high float64) {
	low, high = obs[0].Value, obs[0].Value
	for _, o := range obs[1:] {
		low = math.Min(low, o.Value)
		high = math.Max(high, o.Value)
	}
	return low, high
}

// padding is 8% of the range; a flat series uses 8% of its magnitude, or 1.
func padding(low, high float64) float64 {
	if span := high - low; span > 0 {
		return span * paddingRatio
	}
	if p := math.Abs(high) * paddingRatio; p > 0 {
		return p
	}
	return 1
}

func linePath(pts []model.ChartPoint) string {
	var b strings.Builder
	b.Grow(len(pts) * 18)
	for i, p := range pts {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&b, "%s%.2f,%.2f", cmd, p.X, p.Y)
		if i < len(pts)-1 {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func areaPath(pts []model.ChartPoint, baseline float64) string {
	first, last := pts[0], pts[len(pts)-1]
	var b strings.Builder
	b.Grow(len(pts)*18 + 48)
	fmt.Fprintf(&b, "M%.2f,%.2f", first.X, baseline)
	for _, p := range pts {
		fmt.Fprintf(&b, " L%.2f,%.2f", p.X, p.Y)
	}
	fmt.Fprintf(&b, " L%.2f,%.2f Z", last.X, baseline)
	return b.String()
}

// dateTicks marks the first, middle and last points, one per date.
func dateTicks(pts []model.ChartPoint) []DateTick {
	idx := []int{0, len(pts) / 2, len(pts) - 1}
	ticks := make([]DateTick, 0, len(idx))
	seen := make(map[string]bool, len(idx))
	for _, i := range idx {
		p := pts[i]
		key := p.Date.Format(time.RFC3339)
		if seen[key] {
			continue
		}
		seen[key] = true
		ticks = append(ticks, DateTick{Timestamp: p.Timestamp, Date: p.Date, X: p.X})
	}
	return ticks
}
