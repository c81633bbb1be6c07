package web

import (
	"net/http"
	"net/url"
	"strings"

	"MeasureInGoods/internal/catalog"
	"MeasureInGoods/internal/chart"
	"MeasureInGoods/internal/logging"
	"MeasureInGoods/internal/selection"
)

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	size := canvasSize(r)
	view, snap, pageID := s.visit(w, r, size, true)
	data := buildPageData(view, snap, pageID, r.URL.Query().Get("q"), size)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "page.html", data); err != nil {
		logging.Error("render page: %v", err)
	}
}

// handleBasketWeights applies a weight change and redirects to the
// canonical page URL.
func (s *Server) handleBasketWeights(w http.ResponseWriter, r *http.Request) {
	visitor := s.sessions.Get(r)
	snap := s.catalog.Snapshot()
	q := r.URL.Query()
	sel := selection.FromQuery(q, snap.Capabilities, visitor.LastAsset)
	if sel.IsCustom() {
		sel.Basket = weightsFromForm(q, sel.Basket)
	}
	extra := url.Values{}
	for _, key := range []string{"q", ParamPage} {
		if v := q.Get(key); v != "" {
			extra.Set(key, v)
		}
	}
	target := selection.CanonicalURL("/", sel)
	if len(extra) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + extra.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	size := canvasSize(r)
	view, _, _ := s.visit(w, r, size, false)

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if view.Geometry.Empty() {
		msg := view.Message
		if msg == "" {
			msg = catalog.MsgNoData
		}
		w.Write([]byte(chart.Placeholder(size.Width, size.Height, msg, view.IsError())))
		return
	}
	w.Write([]byte(chart.RenderSVG(view.Geometry, view.Resolution.Title, "", chart.DefaultStyle())))
}
