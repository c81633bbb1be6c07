package chart

import (
	"math"

	"MeasureInGoods/internal/model"
)

// NearestIndex returns the index of the point whose X is closest to x.
// Ties resolve to the earlier point. ok is false for an empty slice.
func NearestIndex(pts []model.ChartPoint, x float64) (idx int, ok bool) {
	if len(pts) == 0 {
		return 0, false
	}
	best := math.Inf(1)
	for i, p := range pts {
		if d := math.Abs(p.X - x); d < best {
			best = d
			idx = i
		}
	}
	return idx, true
}

// Nearest resolves a pointer offset measured from the drawing area's
// left edge to the closest projected point.
func (g *Geometry) Nearest(pointerX float64) (model.ChartPoint, int, bool) {
	if g == nil {
		return model.ChartPoint{}, 0, false
	}
	i, ok := NearestIndex(g.Points, MarginLeft+pointerX)
	if !ok {
		return model.ChartPoint{}, 0, false
	}
	return g.Points[i], i, true
}

// TooltipX places a tooltip of the given width centred on x, kept inside
// the canvas.
func TooltipX(x, tooltipWidth, canvasWidth float64) float64 {
	left := x - tooltipWidth/2
	if limit := canvasWidth - tooltipWidth; left > limit {
		left = limit
	}
	if left < 0 {
		left = 0
	}
	return left
}
