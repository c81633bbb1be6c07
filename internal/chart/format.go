package chart

import (
	"math"
	"strconv"
	"time"
)

// FormatValue renders a value with precision suited to its magnitude.
func FormatValue(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1000:
		return strconv.FormatFloat(v, 'f', 0, 64)
	case abs >= 10:
		return strconv.FormatFloat(v, 'f', 1, 64)
	case abs >= 0.1:
		return strconv.FormatFloat(v, 'f', 2, 64)
	default:
		return strconv.FormatFloat(v, 'g', 3, 64)
	}
}

// FormatDate renders a tick date; spans over two years drop the day.
func FormatDate(d time.Time, span time.Duration) string {
	if span > 2*365*24*time.Hour {
		return d.Format("Jan 2006")
	}
	return d.Format("Jan 2, 2006")
}
