package model

// RangeWindow is a named lookback anchored at the last observation.
// Days == 0 means unbounded.
type RangeWindow struct {
	ID    string
	Label string
	Days  int
}

// Unbounded reports whether the window keeps the whole series.
func (w RangeWindow) Unbounded() bool { return w.Days <= 0 }

// RangeWindows lists the selectable windows in display order.
var RangeWindows = []RangeWindow{
	{ID: "3m", Label: "3 months", Days: 90},
	{ID: "6m", Label: "6 months", Days: 180},
	{ID: "1y", Label: "1 year", Days: 365},
	{ID: "5y", Label: "5 years", Days: 1825},
	{ID: "10y", Label: "10 years", Days: 3650},
	{ID: "max", Label: "Max", Days: 0},
}

// DefaultWindowID is used when no valid window is selected.
const DefaultWindowID = "max"

// LookupWindow finds a window by id.
func LookupWindow(id string) (RangeWindow, bool) {
	for _, w := range RangeWindows {
		if w.ID == id {
			return w, true
		}
	}
	return RangeWindow{}, false
}

// DefaultWindow returns the "max" window.
func DefaultWindow() RangeWindow {
	w, _ := LookupWindow(DefaultWindowID)
	return w
}
