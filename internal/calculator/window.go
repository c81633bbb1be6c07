package calculator

import (
	"sort"
	"time"

	"MeasureInGoods/internal/model"
)

// FilterWindow returns the trailing run of obs whose dates fall within
// w.Days of the last observation's date, inclusive. obs must be ascending.
// An unbounded window returns obs unchanged.
func FilterWindow(obs []model.Observation, w model.RangeWindow) []model.Observation {
	if len(obs) == 0 {
		return []model.Observation{}
	}
	if w.Unbounded() {
		return obs
	}
	cutoff := obs[len(obs)-1].Date.AddDate(0, 0, -w.Days)
	start := sort.Search(len(obs), func(i int) bool {
		return !obs[i].Date.Before(cutoff)
	})
	return obs[start:]
}

// Between clips obs to [start, end]. A zero bound is open.
func Between(obs []model.Observation, start, end time.Time) []model.Observation {
	if len(obs) == 0 || (start.IsZero() && end.IsZero()) {
		return obs
	}
	lo := 0
	if !start.IsZero() {
		lo = sort.Search(len(obs), func(i int) bool { return !obs[i].Date.Before(start) })
	}
	hi := len(obs)
	if !end.IsZero() {
		hi = sort.Search(len(obs), func(i int) bool { return obs[i].Date.After(end) })
	}
	if lo >= hi {
		return []model.Observation{}
	}
	return obs[lo:hi]
}

// Drawable reports whether enough observations remain to draw a line.
func Drawable(obs []model.Observation) bool { return len(obs) >= 2 }
