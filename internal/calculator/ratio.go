package calculator

import (
	"errors"
	"sort"

	"MeasureInGoods/internal/model"
)

// Ratio prices numerator in units of denominator, matching observations by
// timestamp. Dates missing from the denominator, or where it is zero, are
// skipped. The result is ascending.
func Ratio(numerator, denominator []model.Observation) []model.Observation {
	lookup := make(map[string]float64, len(denominator))
	for _, d := range denominator {
		lookup[d.Timestamp] = d.Value
	}
	out := make([]model.Observation, 0, len(numerator))
	for _, n := range numerator {
		d, ok := lookup[n.Timestamp]
		if !ok || d == 0 {
			continue
		}
		out = append(out, model.Observation{Timestamp: n.Timestamp, Date: n.Date, Value: n.Value / d})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Rebase rescales obs so the first observation equals base.
func Rebase(obs []model.Observation, base float64) ([]model.Observation, error) {
	if len(obs) == 0 {
		return nil, errors.New("rebase: no observations")
	}
	anchor := obs[0].Value
	if anchor == 0 {
		return nil, errors.New("rebase: first observation is zero")
	}
	out := make([]model.Observation, len(obs))
	for i, o := range obs {
		out[i] = o
		out[i].Value = o.Value / anchor * base
	}
	return out, nil
}
