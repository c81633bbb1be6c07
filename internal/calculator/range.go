package calculator

import (
	"errors"
	"math"

	"MeasureInGoods/internal/model"
)

// Extent returns the lowest and highest value across the observations.
func Extent(obs []model.Observation) (low, high float64, err error) {
	if len(obs) == 0 {
		return 0, 0, errors.New("no observations provided")
	}
	low = math.Inf(1)
	high = math.Inf(-1)
	for _, o := range obs {
		if o.Value > high {
			high = o.Value
		}
		if o.Value < low {
			low = o.Value
		}
	}
	return low, high, nil
}

// Position returns where v sits within [low, high] (0.0~1.0).
func Position(v, low, high float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (v - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
