package chart

import (
	"math"
	"regexp"
	"strings"
	"testing"
	"time"

	"MeasureInGoods/internal/model"
)

var pathPattern = regexp.MustCompile(`^M-?\d+\.\d{2},-?\d+\.\d{2}( L-?\d+\.\d{2},-?\d+\.\d{2})*( Z)?$`)

func obsAt(dates []string, values []float64) []model.Observation {
	out := make([]model.Observation, len(dates))
	for i, ds := range dates {
		d, _ := time.Parse("2006-01-02", ds)
		out[i] = model.Observation{Timestamp: ds, Date: d, Value: values[i]}
	}
	return out
}

func TestBuild_IdenticalValues(t *testing.T) {
	obs := obsAt([]string{"2024-01-01", "2024-01-02"}, []float64{5, 5})
	g := Build(obs, model.Size{Width: 640, Height: 320})

	if g.Empty() {
		t.Fatal("expected non-empty geometry for two points")
	}
	if !pathPattern.MatchString(g.LinePath) {
		t.Errorf("malformed line path: %q", g.LinePath)
	}
	if !pathPattern.MatchString(g.AreaPath) {
		t.Errorf("malformed area path: %q", g.AreaPath)
	}
	if math.Abs(g.DomainMin-4.6) > 1e-9 || math.Abs(g.DomainMax-5.4) > 1e-9 {
		t.Errorf("expected padded domain [4.6, 5.4], got [%v, %v]", g.DomainMin, g.DomainMax)
	}
	for _, p := range g.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			t.Errorf("non-finite projected point %+v", p)
		}
	}
}

func TestBuild_ZeroValuesUseNominalPadding(t *testing.T) {
	obs := obsAt([]string{"2024-01-01", "2024-01-02"}, []float64{0, 0})
	g := Build(obs, model.Size{Width: 640, Height: 320})
	if g.DomainMin != -1 || g.DomainMax != 1 {
		t.Errorf("expected domain [-1, 1], got [%v, %v]", g.DomainMin, g.DomainMax)
	}
}

func TestBuild_SingleTimestamp(t *testing.T) {
	obs := obsAt([]string{"2024-01-01", "2024-01-01"}, []float64{1, 2})
	g := Build(obs, model.Size{Width: 640, Height: 320})
	for _, p := range g.Points {
		if p.X != MarginLeft {
			t.Errorf("expected x at left margin, got %v", p.X)
		}
	}
	if len(g.DateTicks) != 1 {
		t.Errorf("expected date ticks de-duplicated to 1, got %d", len(g.DateTicks))
	}
}

func TestBuild_TooFewPoints(t *testing.T) {
	tests := []struct {
		name string
		obs  []model.Observation
	}{
		{"nil", nil},
		{"single", obsAt([]string{"2024-01-01"}, []float64{3})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(tt.obs, model.Size{Width: 640, Height: 320})
			if !g.Empty() {
				t.Errorf("expected empty geometry")
			}
			if g.LinePath != "" || g.AreaPath != "" {
				t.Errorf("expected no paths, got %q / %q", g.LinePath, g.AreaPath)
			}
			if g.Baseline != 320-MarginBottom {
				t.Errorf("expected baseline %v, got %v", 320-MarginBottom, g.Baseline)
			}
		})
	}
}

func TestBuild_TicksAndBaseline(t *testing.T) {
	obs := obsAt(
		[]string{"2024-01-01", "2024-02-01", "2024-03-01", "2024-04-01", "2024-05-01"},
		[]float64{10, 20, 15, 30, 25},
	)
	g := Build(obs, model.Size{Width: 800, Height: 400})

	if len(g.ValueTicks) != 5 {
		t.Fatalf("expected 5 value ticks, got %d", len(g.ValueTicks))
	}
	if g.ValueTicks[0].Value != g.DomainMin || g.ValueTicks[4].Value != g.DomainMax {
		t.Errorf("ticks should span the padded domain")
	}
	for i := 1; i < len(g.ValueTicks); i++ {
		if g.ValueTicks[i].Y >= g.ValueTicks[i-1].Y {
			t.Errorf("tick %d should sit above tick %d", i, i-1)
		}
	}
	if g.Baseline != 400-MarginBottom {
		t.Errorf("baseline = %v", g.Baseline)
	}
	if len(g.DateTicks) != 3 {
		t.Fatalf("expected 3 date ticks, got %d", len(g.DateTicks))
	}
	want := []string{"2024-01-01", "2024-03-01", "2024-05-01"}
	for i, tick := range g.DateTicks {
		if tick.Timestamp != want[i] {
			t.Errorf("date tick %d = %s, want %s", i, tick.Timestamp, want[i])
		}
	}
	for i := 1; i < len(g.Points); i++ {
		if g.Points[i].X <= g.Points[i-1].X {
			t.Errorf("x should increase with date at %d", i)
		}
	}
	last := g.Points[len(g.Points)-1]
	if math.Abs(last.X-(800-MarginRight)) > 1e-9 {
		t.Errorf("last point should touch the right margin, got %v", last.X)
	}
	if !strings.HasSuffix(g.AreaPath, " Z") {
		t.Errorf("area path should close: %q", g.AreaPath)
	}
}

func TestBuild_WidthFloor(t *testing.T) {
	obs := obsAt([]string{"2024-01-01", "2024-01-02"}, []float64{1, 2})
	g := Build(obs, model.Size{Width: 10, Height: 10})
	if g.Size.Width != MinWidth || g.Size.Height != MinHeight {
		t.Errorf("expected size floored to %vx%v, got %vx%v", MinWidth, MinHeight, g.Size.Width, g.Size.Height)
	}
	for _, p := range g.Points {
		if p.X < MarginLeft || p.X > g.Size.Width-MarginRight {
			t.Errorf("point x %v outside drawing area", p.X)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	obs := obsAt([]string{"2024-01-01", "2024-06-01"}, []float64{1.5, 1.75})
	g := Build(obs, model.Size{Width: 640, Height: 320})

	out := string(RenderSVG(g, "S&P 500 priced in Gold", "", DefaultStyle()))
	if !strings.HasPrefix(out, "<svg") || !strings.HasSuffix(out, "</svg>") {
		t.Fatalf("expected an svg document, got %q", out)
	}
	if !strings.Contains(out, `aria-label="S&amp;P 500 priced in Gold"`) {
		t.Errorf("title should be escaped into aria-label")
	}
	if !strings.Contains(out, g.LinePath) {
		t.Errorf("line path missing from output")
	}

	empty := string(RenderSVG(Build(nil, model.Size{Width: 640, Height: 320}), "", "No data available yet.", DefaultStyle()))
	if !strings.Contains(empty, "No data available yet.") {
		t.Errorf("placeholder should carry the message, got %q", empty)
	}
}
