package model

// ChartPoint is an observation projected into canvas pixels.
type ChartPoint struct {
	Observation
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a canvas size in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
