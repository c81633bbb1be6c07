package calculator

import (
	"math"
	"testing"
	"time"

	"MeasureInGoods/internal/model"
)

func obsAt(ts string, v float64) model.Observation {
	d, _ := time.Parse("2006-01-02", ts)
	return model.Observation{Timestamp: ts, Date: d, Value: v}
}

func TestRatio_SkipsMissingAndZero(t *testing.T) {
	num := []model.Observation{
		obsAt("2023-02-28", 3970.15),
		obsAt("2023-01-31", 4076.60),
		obsAt("2023-03-31", 4109.31),
	}
	den := []model.Observation{
		obsAt("2023-01-31", 1928.36),
		obsAt("2023-02-28", 0),
	}
	got := Ratio(num, den)
	if len(got) != 1 {
		t.Fatalf("expected 1 ratio point, got %d", len(got))
	}
	if got[0].Timestamp != "2023-01-31" {
		t.Errorf("unexpected timestamp %s", got[0].Timestamp)
	}
	if math.Abs(got[0].Value-4076.60/1928.36) > 1e-12 {
		t.Errorf("unexpected ratio %f", got[0].Value)
	}
}

func TestRebase(t *testing.T) {
	obs := []model.Observation{obsAt("2023-01-31", 50), obsAt("2023-02-28", 75)}
	got, err := Rebase(obs, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Value != 100 || got[1].Value != 150 {
		t.Errorf("unexpected rebased values: %v, %v", got[0].Value, got[1].Value)
	}
	if obs[0].Value != 50 {
		t.Error("input must not be mutated")
	}
	if _, err := Rebase([]model.Observation{obsAt("2023-01-31", 0)}, 100); err == nil {
		t.Error("expected error for zero anchor")
	}
}

func TestExtentAndPosition(t *testing.T) {
	obs := []model.Observation{obsAt("2023-01-31", 2), obsAt("2023-02-28", 8), obsAt("2023-03-31", 5)}
	low, high, err := Extent(obs)
	if err != nil || low != 2 || high != 8 {
		t.Fatalf("Extent = %v, %v, %v", low, high, err)
	}
	pos, _ := Position(5, low, high)
	if pos != 0.5 {
		t.Errorf("expected 0.5, got %v", pos)
	}
	if _, _, err := Extent(nil); err == nil {
		t.Error("expected error for empty input")
	}
}
