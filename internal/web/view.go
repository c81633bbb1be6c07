package web

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"MeasureInGoods/internal/catalog"
	"MeasureInGoods/internal/chart"
	"MeasureInGoods/internal/model"
	"MeasureInGoods/internal/page"
	"MeasureInGoods/internal/selection"
)

type option struct {
	ID       string
	Label    string
	Href     string
	Selected bool
}

type basketRow struct {
	ID       string
	Label    string
	Category string
	Percent  int
	Href     string // removes the item
}

type resourceRow struct {
	catalog.Resource
	Active   bool
	Disabled bool
	Href     string // toggles the item
}

type tableRow struct {
	Date  string
	Value string
}

type pageData struct {
	Title        string
	CanonicalURL string
	Notice       string

	Assets   []option
	Units    []option
	Variants []option
	Ranges   []option
	Indexes  []option

	IsCustom    bool
	Basket      []basketRow
	BasketTotal int
	Resources   []resourceRow
	MaxItems    int
	Search      string
	PageID      string
	Selection   url.Values

	State      string
	Message    string
	IsError    bool
	ChartSVG   template.HTML
	ChartLabel string
	Width      float64
	Height     float64
	HoverQuery string
	MarginLeft float64

	Latest  *tableRow
	Unit    string
	Summary *page.Summary
	Rows    []tableRow
}

const maxTableRows = 400

// buildPageData renders view for page pageID. Every link and form carries
// the page id so the follow-up request lands on the same page instance.
func buildPageData(view *page.View, snap catalog.Snapshot, pageID, search string, size model.Size) *pageData {
	sel := view.Selection
	res := view.Resolution
	caps := snap.Capabilities

	d := &pageData{
		Title:        res.Title,
		CanonicalURL: selection.CanonicalURL("/", sel),
		Notice:       snap.Notice,
		IsCustom:     sel.IsCustom(),
		MaxItems:     catalog.MaxBasketItems,
		Search:       search,
		PageID:       pageID,
		Selection:    withPageID(selection.Encode(sel), pageID),
		State:        view.State(),
		Message:      view.Message,
		IsError:      view.IsError(),
		ChartLabel:   res.ChartLabel,
		Width:        view.Geometry.Size.Width,
		Height:       view.Geometry.Size.Height,
		HoverQuery:   withPageID(selection.Encode(sel), pageID).Encode(),
		MarginLeft:   chart.MarginLeft,
	}

	for _, a := range caps.Assets {
		d.Assets = append(d.Assets, option{
			ID: a.ID, Label: a.Label, Selected: a.ID == sel.Asset,
			Href: selection.With("/", sel, selection.ParamAsset, a.ID),
		})
	}
	if asset, ok := caps.Asset(sel.Asset); ok {
		for _, u := range asset.Units {
			d.Units = append(d.Units, option{
				ID: u.ID, Label: u.Label, Selected: u.ID == sel.Unit,
				Href: selection.With("/", sel, selection.ParamUnit, u.ID),
			})
		}
	}
	d.Units = append(d.Units, option{
		ID: model.CustomUnitID, Label: catalog.CustomUnitLabel, Selected: sel.IsCustom(),
		Href: selection.With("/", sel, selection.ParamUnit, model.CustomUnitID),
	})
	if res.Unit != nil {
		for _, v := range res.Unit.Variants {
			d.Variants = append(d.Variants, option{
				ID: v.ID, Label: v.Label, Selected: v.ID == sel.Variant,
				Href: selection.With("/", sel, selection.ParamVariant, v.ID),
			})
		}
	}
	for _, w := range model.RangeWindows {
		d.Ranges = append(d.Ranges, option{
			ID: w.ID, Label: w.Label, Selected: w.ID == sel.Range.ID,
			Href: selection.With("/", sel, selection.ParamRange, w.ID),
		})
	}
	for _, ri := range catalog.ReferenceIndexes {
		href := selection.With("/", sel, selection.ParamIndex, ri.ID)
		if ri.ID == sel.Index {
			href = selection.With("/", sel, selection.ParamIndex, "")
		}
		d.Indexes = append(d.Indexes, option{ID: ri.ID, Label: ri.Label, Selected: ri.ID == sel.Index, Href: href})
	}

	if d.IsCustom {
		fillBasket(d, sel, search)
	}
	d.tagLinks()

	switch {
	case view.Geometry.Empty():
		msg := view.Message
		if msg == "" {
			msg = catalog.MsgNoData
		}
		d.ChartSVG = chart.Placeholder(size.Width, size.Height, msg, view.IsError())
	default:
		d.ChartSVG = chart.RenderSVG(view.Geometry, res.Title, "", chart.DefaultStyle())
	}

	if view.Series != nil {
		d.Unit = view.Series.Unit
		if d.Unit == "" {
			d.Unit = res.ChartLabel
		}
	}
	if view.HasLatest {
		d.Latest = &tableRow{Date: view.Latest.Timestamp, Value: chart.FormatValue(view.Latest.Value)}
		d.Summary = view.Summary
	}
	// Newest first, capped.
	for i := len(view.Points) - 1; i >= 0 && len(d.Rows) < maxTableRows; i-- {
		o := view.Points[i]
		d.Rows = append(d.Rows, tableRow{Date: o.Timestamp, Value: chart.FormatValue(o.Value)})
	}
	return d
}

func withPageID(q url.Values, pageID string) url.Values {
	if pageID != "" {
		q.Set(ParamPage, pageID)
	}
	return q
}

func (d *pageData) tagLinks() {
	if d.PageID == "" {
		return
	}
	tag := "&" + ParamPage + "=" + url.QueryEscape(d.PageID)
	for _, opts := range [][]option{d.Assets, d.Units, d.Variants, d.Ranges, d.Indexes} {
		for i := range opts {
			opts[i].Href += tag
		}
	}
	for i := range d.Basket {
		d.Basket[i].Href += tag
	}
	for i := range d.Resources {
		d.Resources[i].Href += tag
	}
}

func fillBasket(d *pageData, sel model.SelectionState, search string) {
	withBasket := func(items []model.BasketItem) string {
		href := selection.With("/", sel, selection.ParamBasket, catalog.FormatBasket(items))
		if search != "" {
			href += "&q=" + url.QueryEscape(search)
		}
		return href
	}

	active := make(map[string]bool, len(sel.Basket))
	for _, it := range sel.Basket {
		active[it.ID] = true
		r, _ := catalog.LookupResource(it.ID)
		d.Basket = append(d.Basket, basketRow{
			ID: it.ID, Label: r.Label, Category: r.Category,
			Percent: int(it.Weight*100 + 0.5),
			Href:    withBasket(catalog.Toggle(sel.Basket, it.ID)),
		})
	}
	d.BasketTotal = catalog.TotalPercent(sel.Basket)

	full := len(sel.Basket) >= catalog.MaxBasketItems
	for _, r := range catalog.SearchResources(search) {
		d.Resources = append(d.Resources, resourceRow{
			Resource: r,
			Active:   active[r.ID],
			Disabled: !active[r.ID] && full,
			Href:     withBasket(catalog.Toggle(sel.Basket, r.ID)),
		})
	}
}

// weightsFromForm applies w_<id>=<percent> fields to the basket. Each row
// of the builder submits its own field.
func weightsFromForm(q url.Values, current []model.BasketItem) []model.BasketItem {
	items := append([]model.BasketItem(nil), current...)
	for key, vals := range q {
		id, ok := strings.CutPrefix(key, "w_")
		if !ok || len(vals) == 0 {
			continue
		}
		pct, err := strconv.ParseFloat(vals[0], 64)
		if err != nil {
			continue
		}
		items = catalog.SetWeight(items, id, pct)
	}
	return catalog.NormalizeWeights(items)
}
