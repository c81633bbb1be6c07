// Package catalog holds the capability matrix: which assets can be priced
// in which units, how a selection maps to an API resource, and the custom
// basket resources.
package catalog

import "MeasureInGoods/internal/model"

// CustomUnitLabel is the label of the always-offered custom basket unit.
const CustomUnitLabel = "Custom basket"

// ReferenceIndex is a fixed composite ratio series served at /ratios/{id}.
type ReferenceIndex struct {
	ID    string
	Label string
	Asset string
	Unit  string
}

// ReferenceIndexes lists the named ratio series the API publishes.
var ReferenceIndexes = []ReferenceIndex{
	{ID: "sp500-gold", Label: "S&P 500 / Gold", Asset: "S&P 500", Unit: "Gold"},
}

// LookupIndex finds a reference index by id.
func LookupIndex(id string) (ReferenceIndex, bool) {
	for _, ri := range ReferenceIndexes {
		if ri.ID == id {
			return ri, true
		}
	}
	return ReferenceIndex{}, false
}

// Fallback returns the built-in catalog used when the API cannot be asked.
// Each call returns a fresh copy.
func Fallback() *model.Capabilities {
	sp500Units := func() []model.UnitCapability {
		return []model.UnitCapability{
			{ID: "gold", Label: "Gold", Endpoint: "/ratios/sp500-gold"},
			{ID: "usd", Label: "USD", Endpoint: "/ratios/sp500-usd"},
			{ID: "chf", Label: "Swiss franc (CHF)", Endpoint: "/ratios/sp500-chf"},
		}
	}
	return &model.Capabilities{
		Assets: []model.AssetCapability{
			{ID: "SPX", Label: "S&P 500 Index (SPX)", Units: sp500Units()},
			{ID: "SPY", Label: "SPDR S&P 500 ETF (SPY)", Units: sp500Units()},
			{
				ID:    "GOLD",
				Label: "Gold",
				Units: []model.UnitCapability{{
					ID:               "usd",
					Label:            "USD",
					DefaultVariantID: "ounce",
					Variants: []model.UnitVariant{
						{ID: "ounce", Label: "Troy ounce", ChartLabel: "USD per troy ounce", Endpoint: "/ratios/gold-usd"},
						{ID: "kilogram", Label: "Kilogram", ChartLabel: "USD per kilogram", Endpoint: "/ratios/gold-usd-kg"},
						{ID: "gram", Label: "Gram", ChartLabel: "USD per gram", Endpoint: "/ratios/gold-usd-gram"},
					},
				}},
			},
		},
	}
}
