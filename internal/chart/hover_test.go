package chart

import (
	"testing"

	"MeasureInGoods/internal/model"
)

func pointsAt(xs ...float64) []model.ChartPoint {
	pts := make([]model.ChartPoint, len(xs))
	for i, x := range xs {
		pts[i] = model.ChartPoint{X: x}
	}
	return pts
}

func TestNearestIndex(t *testing.T) {
	pts := pointsAt(0, 10, 20, 30)
	tests := []struct {
		name string
		x    float64
		want int
	}{
		{"exact", 20, 2},
		{"closer to left", 14, 1},
		{"closer to right", 16, 2},
		{"tie goes to earlier", 15, 1},
		{"before first", -50, 0},
		{"after last", 500, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NearestIndex(pts, tt.x)
			if !ok || got != tt.want {
				t.Errorf("NearestIndex(%v) = %d, %v; want %d", tt.x, got, ok, tt.want)
			}
		})
	}
}

func TestNearestIndex_Empty(t *testing.T) {
	if _, ok := NearestIndex(nil, 10); ok {
		t.Error("expected no result for empty list")
	}
	var g *Geometry
	if _, _, ok := g.Nearest(10); ok {
		t.Error("expected no result for nil geometry")
	}
}

func TestNearest_Idempotent(t *testing.T) {
	obs := obsAt(
		[]string{"2024-01-01", "2024-01-10", "2024-01-20", "2024-01-31"},
		[]float64{1, 3, 2, 4},
	)
	g := Build(obs, model.Size{Width: 640, Height: 320})

	_, first, ok1 := g.Nearest(250)
	_, second, ok2 := g.Nearest(250)
	if !ok1 || !ok2 || first != second {
		t.Errorf("expected identical results, got %d/%v and %d/%v", first, ok1, second, ok2)
	}

	p, i, _ := g.Nearest(0)
	if i != 0 || p.Timestamp != "2024-01-01" {
		t.Errorf("pointer at origin should resolve to first point, got %d (%s)", i, p.Timestamp)
	}
}

func TestTooltipX(t *testing.T) {
	tests := []struct {
		name    string
		x       float64
		want    float64
		tooltip float64
		canvas  float64
	}{
		{"centred", 300, 240, 120, 640},
		{"clamped left", 10, 0, 120, 640},
		{"clamped right", 630, 520, 120, 640},
		{"wider than canvas", 50, 0, 800, 640},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TooltipX(tt.x, tt.tooltip, tt.canvas); got != tt.want {
				t.Errorf("TooltipX(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}
