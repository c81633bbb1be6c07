package model

import "time"

// Observation is a single dated value parsed from an API payload.
type Observation struct {
	Timestamp string    `json:"timestamp"` // wire text, e.g. "2023-01-31"
	Date      time.Time `json:"-"`
	Value     float64   `json:"value"`
}

// Series is an identified, ascending sequence of observations.
// Duplicate timestamps are tolerated.
type Series struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Unit   string        `json:"unit,omitempty"`
	Points []Observation `json:"points"`

	// Numerator and Denominator are set, and Points left empty, when the
	// API returns the two legs of a ratio instead of the ratio itself.
	Numerator   *Series `json:"numerator,omitempty"`
	Denominator *Series `json:"denominator,omitempty"`
}

// Latest returns the last observation of the series.
func (s *Series) Latest() (Observation, bool) {
	if s == nil || len(s.Points) == 0 {
		return Observation{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// WithPoints returns a shallow copy of the series carrying pts.
func (s *Series) WithPoints(pts []Observation) *Series {
	cp := *s
	cp.Points = pts
	return &cp
}
