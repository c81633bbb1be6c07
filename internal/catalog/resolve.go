package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"MeasureInGoods/internal/model"
)

// Status messages shown before or instead of a request.
const (
	MsgChooseAsset = "Choose an asset to begin."
	MsgBuildBasket = "Build a custom basket to preview calculations."
	MsgNoData      = "No data available yet."
)

// SeriesQueryPath is the parameterized series resource.
const SeriesQueryPath = "/api/v1/series"

// ErrUnsupported means the catalog has no endpoint for a combination.
var ErrUnsupported = errors.New("unsupported combination")

// UnsupportedError carries the user-facing explanation for ErrUnsupported.
type UnsupportedError struct {
	Asset string
	Unit  string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("Pricing %s in %s is not available yet.", e.Asset, e.Unit)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

// Resolution is a selection matched against the catalog.
type Resolution struct {
	Asset   *model.AssetCapability
	Unit    *model.UnitCapability // nil for the custom basket
	Variant *model.UnitVariant

	AssetLabel  string
	UnitLabel   string
	StatusLabel string // "Unit (Variant)" when a variant is active
	ChartLabel  string
	Title       string
	Endpoint    string // empty when nothing should be requested
	Custom      bool
	Idle        string // reason nothing is requested, if any
}

// LoadingMessage is shown while Endpoint is being fetched.
func (r *Resolution) LoadingMessage() string {
	return fmt.Sprintf("Loading %s priced in %s…", r.AssetLabel, r.StatusLabel)
}

// Resolve maps sel onto caps. An asset/unit pair without an endpoint
// yields an *UnsupportedError and no request is made.
func Resolve(caps *model.Capabilities, sel model.SelectionState) (*Resolution, error) {
	if sel.Index != "" {
		if ri, ok := LookupIndex(sel.Index); ok {
			return &Resolution{
				AssetLabel:  ri.Asset,
				UnitLabel:   ri.Unit,
				StatusLabel: ri.Unit,
				ChartLabel:  ri.Label,
				Title:       fmt.Sprintf("%s priced in %s", ri.Asset, ri.Unit),
				Endpoint:    "/ratios/" + ri.ID,
			}, nil
		}
	}

	res := &Resolution{Title: "Asset priced in goods"}
	asset, ok := caps.Asset(sel.Asset)
	if !ok {
		res.Idle = MsgChooseAsset
		return res, nil
	}
	res.Asset = asset
	res.AssetLabel = labelOr(asset.Label, asset.ID)

	if sel.IsCustom() {
		res.Custom = true
		res.UnitLabel = CustomUnitLabel
		res.StatusLabel = CustomUnitLabel
		res.ChartLabel = CustomUnitLabel
		res.Title = fmt.Sprintf("%s priced in your custom basket", res.AssetLabel)
		if len(sel.Basket) == 0 {
			res.Idle = MsgBuildBasket
			return res, nil
		}
		res.Endpoint = BasketQueryPath(asset.ID, sel)
		return res, nil
	}

	unit, ok := asset.Unit(sel.Unit)
	if !ok {
		if sel.Unit == "" {
			res.Idle = MsgChooseAsset
			return res, nil
		}
		res.UnitLabel, res.StatusLabel, res.ChartLabel = sel.Unit, sel.Unit, sel.Unit
		return res, &UnsupportedError{Asset: res.AssetLabel, Unit: sel.Unit}
	}
	res.Unit = unit
	res.UnitLabel = labelOr(unit.Label, unit.ID)
	res.Variant = ResolveVariant(unit, sel.Variant)

	res.StatusLabel = res.UnitLabel
	res.ChartLabel = res.UnitLabel
	if v := res.Variant; v != nil {
		if v.Label != "" {
			res.StatusLabel = fmt.Sprintf("%s (%s)", res.UnitLabel, v.Label)
			res.ChartLabel = res.StatusLabel
		}
		if v.ChartLabel != "" {
			res.ChartLabel = v.ChartLabel
		}
		res.Endpoint = v.Endpoint
	} else {
		res.Endpoint = unit.Endpoint
	}
	res.Title = fmt.Sprintf("%s priced in %s", res.AssetLabel, res.ChartLabel)

	if res.Endpoint == "" {
		return res, &UnsupportedError{Asset: res.AssetLabel, Unit: res.StatusLabel}
	}
	return res, nil
}

// ResolveVariant picks the requested variant, else the unit default, else
// the first. Units without variants return nil.
func ResolveVariant(unit *model.UnitCapability, requested string) *model.UnitVariant {
	if unit == nil || len(unit.Variants) == 0 {
		return nil
	}
	if v, ok := unit.Variant(requested); ok && requested != "" {
		return v
	}
	if v, ok := unit.Variant(unit.DefaultVariantID); ok && unit.DefaultVariantID != "" {
		return v
	}
	return &unit.Variants[0]
}

// BasketQueryPath builds the parameterized series request for a basket.
func BasketQueryPath(asset string, sel model.SelectionState) string {
	q := url.Values{}
	q.Set("asset", asset)
	q.Set("basket", FormatBasket(sel.Basket))
	if !sel.Start.IsZero() {
		q.Set("start", sel.Start.Format("2006-01-02"))
	}
	if !sel.End.IsZero() {
		q.Set("end", sel.End.Format("2006-01-02"))
	}
	return SeriesQueryPath + "?" + q.Encode()
}

// FormatBasket renders items as "id:weight,id:weight".
func FormatBasket(items []model.BasketItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.ID + ":" + strconv.FormatFloat(it.Weight, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

// ParseBasket reads "id:weight,..." keeping known resources only. A missing
// weight counts as zero; the result is normalized and capped.
func ParseBasket(s string) []model.BasketItem {
	var items []model.BasketItem
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		id, weight, _ := strings.Cut(strings.TrimSpace(part), ":")
		if _, ok := LookupResource(id); !ok || seen[id] {
			continue
		}
		seen[id] = true
		w, err := strconv.ParseFloat(weight, 64)
		if err != nil {
			w = 0
		}
		items = append(items, model.BasketItem{ID: id, Weight: w})
		if len(items) == MaxBasketItems {
			break
		}
	}
	return NormalizeWeights(items)
}

// FallbackNotice explains that the built-in catalog is in use.
func FallbackNotice(err error) string {
	return fmt.Sprintf("Capabilities unavailable (%v). Showing fallback options.", err)
}

func labelOr(label, id string) string {
	if label != "" {
		return label
	}
	return id
}
