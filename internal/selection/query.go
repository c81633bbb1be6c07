// Package selection reads and writes the page selection in the URL query.
package selection

import (
	"net/url"
	"strings"
	"time"

	"MeasureInGoods/internal/catalog"
	"MeasureInGoods/internal/model"
)

// Query keys.
const (
	ParamAsset   = "asset"
	ParamUnit    = "unit"
	ParamVariant = "variant"
	ParamIndex   = "index"
	ParamRange   = "range"
	ParamStart   = "start"
	ParamEnd     = "end"
	ParamBasket  = "basket"
)

const dateLayout = "2006-01-02"

// FromQuery parses a selection. Missing or unknown values fall back to
// defaults: the asset to lastAsset and then the first catalog asset, the
// unit to the asset's first unit, the variant to the unit's default.
func FromQuery(q url.Values, caps *model.Capabilities, lastAsset string) model.SelectionState {
	var sel model.SelectionState

	if id := strings.TrimSpace(q.Get(ParamIndex)); id != "" {
		if _, ok := catalog.LookupIndex(id); ok {
			sel.Index = id
		}
	}

	asset := pickAsset(caps, q.Get(ParamAsset), lastAsset)
	if asset != nil {
		sel.Asset = asset.ID
		sel.Unit = pickUnit(asset, q.Get(ParamUnit))
		if unit, ok := asset.Unit(sel.Unit); ok {
			if v := catalog.ResolveVariant(unit, q.Get(ParamVariant)); v != nil {
				sel.Variant = v.ID
			}
		}
	}

	if sel.IsCustom() {
		sel.Basket = catalog.ParseBasket(q.Get(ParamBasket))
	}

	sel.Range = model.DefaultWindow()
	if w, ok := model.LookupWindow(q.Get(ParamRange)); ok {
		sel.Range = w
	}

	sel.Start = parseDate(q.Get(ParamStart))
	sel.End = parseDate(q.Get(ParamEnd))
	if !sel.Start.IsZero() && !sel.End.IsZero() && sel.Start.After(sel.End) {
		sel.Start, sel.End = time.Time{}, time.Time{}
	}
	return sel
}

// Encode renders the canonical query for sel.
func Encode(sel model.SelectionState) url.Values {
	q := url.Values{}
	if sel.Index != "" {
		q.Set(ParamIndex, sel.Index)
	}
	if sel.Asset != "" {
		q.Set(ParamAsset, sel.Asset)
	}
	if sel.Unit != "" {
		q.Set(ParamUnit, sel.Unit)
	}
	if sel.Variant != "" {
		q.Set(ParamVariant, sel.Variant)
	}
	if sel.IsCustom() && len(sel.Basket) > 0 {
		q.Set(ParamBasket, catalog.FormatBasket(sel.Basket))
	}
	if sel.Range.ID != "" {
		q.Set(ParamRange, sel.Range.ID)
	}
	if !sel.Start.IsZero() {
		q.Set(ParamStart, sel.Start.Format(dateLayout))
	}
	if !sel.End.IsZero() {
		q.Set(ParamEnd, sel.End.Format(dateLayout))
	}
	return q
}

// CanonicalURL joins path and the canonical query.
func CanonicalURL(path string, sel model.SelectionState) string {
	q := Encode(sel).Encode()
	if q == "" {
		return path
	}
	return path + "?" + q
}

// With returns the canonical URL of sel after one parameter changes. An
// empty value removes the parameter.
func With(path string, sel model.SelectionState, key, value string) string {
	q := Encode(sel)
	if value == "" {
		q.Del(key)
	} else {
		q.Set(key, value)
	}
	// A new asset or unit resets what depends on it.
	switch key {
	case ParamAsset:
		q.Del(ParamUnit)
		q.Del(ParamVariant)
	case ParamUnit:
		q.Del(ParamVariant)
	}
	return path + "?" + q.Encode()
}

func pickAsset(caps *model.Capabilities, requested, last string) *model.AssetCapability {
	for _, id := range []string{requested, last} {
		if a, ok := caps.Asset(id); ok && id != "" {
			return a
		}
	}
	if caps == nil || len(caps.Assets) == 0 {
		return nil
	}
	return &caps.Assets[0]
}

func pickUnit(asset *model.AssetCapability, requested string) string {
	if requested == model.CustomUnitID {
		return requested
	}
	if _, ok := asset.Unit(requested); ok && requested != "" {
		return requested
	}
	if len(asset.Units) == 0 {
		return model.CustomUnitID
	}
	return asset.Units[0].ID
}

func parseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}
