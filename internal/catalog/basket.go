package catalog

import (
	"math"
	"strings"

	"MeasureInGoods/internal/model"
)

// MaxBasketItems caps the number of resources in a custom basket.
const MaxBasketItems = 6

// Resource is a good that can be added to a custom basket.
type Resource struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// Resources lists the basket goods in display order.
var Resources = []Resource{
	{ID: "gold", Label: "Gold bullion", Category: "Metals"},
	{ID: "silver", Label: "Silver bullion", Category: "Metals"},
	{ID: "timber", Label: "Timber (per cubic metre)", Category: "Materials"},
	{ID: "oil", Label: "Crude oil (barrel)", Category: "Energy"},
	{ID: "natgas", Label: "Natural gas (MMBtu)", Category: "Energy"},
	{ID: "plastics", Label: "Industrial plastics", Category: "Materials"},
	{ID: "wheat", Label: "Wheat (bushel)", Category: "Agriculture"},
	{ID: "rice", Label: "Rice (cwt)", Category: "Agriculture"},
}

// LookupResource finds a basket resource by id.
func LookupResource(id string) (Resource, bool) {
	for _, r := range Resources {
		if r.ID == id {
			return r, true
		}
	}
	return Resource{}, false
}

// SearchResources matches query against label and category, case-insensitively.
func SearchResources(query string) []Resource {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Resource(nil), Resources...)
	}
	var out []Resource
	for _, r := range Resources {
		if strings.Contains(strings.ToLower(r.Label+" "+r.Category), q) {
			out = append(out, r)
		}
	}
	return out
}

// NormalizeWeights rescales weights to sum to 1. Non-positive or
// non-finite totals fall back to equal weights.
func NormalizeWeights(items []model.BasketItem) []model.BasketItem {
	if len(items) == 0 {
		return nil
	}
	var total float64
	for _, it := range items {
		if w := it.Weight; w > 0 && !math.IsInf(w, 0) {
			total += w
		}
	}
	out := make([]model.BasketItem, len(items))
	for i, it := range items {
		out[i].ID = it.ID
		if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
			out[i].Weight = 1 / float64(len(items))
			continue
		}
		if it.Weight > 0 && !math.IsInf(it.Weight, 0) {
			out[i].Weight = it.Weight / total
		}
	}
	return out
}

// Toggle adds id to the basket, or removes it if present. Unknown ids and
// additions beyond MaxBasketItems leave the basket unchanged.
func Toggle(items []model.BasketItem, id string) []model.BasketItem {
	items = NormalizeWeights(items)
	for i, it := range items {
		if it.ID == id {
			rest := append(append([]model.BasketItem(nil), items[:i]...), items[i+1:]...)
			return NormalizeWeights(rest)
		}
	}
	if _, ok := LookupResource(id); !ok || len(items) >= MaxBasketItems {
		return items
	}
	next := append(items, model.BasketItem{ID: id, Weight: 1 / float64(len(items)+1)})
	return NormalizeWeights(next)
}

// SetWeight sets id's weight as a percentage and renormalizes.
func SetWeight(items []model.BasketItem, id string, percent float64) []model.BasketItem {
	items = NormalizeWeights(items)
	if percent < 0 || math.IsNaN(percent) {
		percent = 0
	}
	for i := range items {
		if items[i].ID == id {
			items[i].Weight = percent / 100
		}
	}
	return NormalizeWeights(items)
}

// TotalPercent is the basket weight sum in whole percent.
func TotalPercent(items []model.BasketItem) int {
	var sum float64
	for _, it := range items {
		sum += it.Weight * 100
	}
	return int(math.Round(sum))
}
