package model

import "time"

// CustomUnitID is the unit option that prices an asset in a user basket.
const CustomUnitID = "custom"

// BasketItem is one resource in a custom basket with a normalized weight.
type BasketItem struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
}

// SelectionState is everything the user picked on the page.
type SelectionState struct {
	Asset   string
	Unit    string
	Variant string
	Index   string // named reference index, overrides asset/unit when set
	Basket  []BasketItem
	Range   RangeWindow
	Start   time.Time
	End     time.Time
}

// IsCustom reports whether the custom basket unit is selected.
func (s SelectionState) IsCustom() bool { return s.Unit == CustomUnitID }
