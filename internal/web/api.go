package web

import (
	"net/http"
	"strconv"

	"MeasureInGoods/internal/catalog"
	"MeasureInGoods/internal/chart"
	"MeasureInGoods/internal/model"
)

// tooltipWidth matches the tooltip box in the page stylesheet.
const tooltipWidth = 160.0

type chartResponse struct {
	State      string             `json:"state"`
	Message    string             `json:"message,omitempty"`
	Title      string             `json:"title"`
	ChartLabel string             `json:"chart_label"`
	Unit       string             `json:"unit,omitempty"`
	Latest     *model.Observation `json:"latest,omitempty"`
	Geometry   *chart.Geometry    `json:"geometry"`
}

type hoverResponse struct {
	Found     bool    `json:"found"`
	Index     int     `json:"index"`
	Timestamp string  `json:"timestamp,omitempty"`
	Value     float64 `json:"value"`
	Label     string  `json:"label,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	TooltipX  float64 `json:"tooltip_x"`
}

type capabilitiesResponse struct {
	catalog.Snapshot
	Fallback  bool                     `json:"fallback"`
	Resources []catalog.Resource       `json:"resources"`
	Indexes   []catalog.ReferenceIndex `json:"indexes"`
	Ranges    []model.RangeWindow      `json:"ranges"`
}

func (s *Server) handleAPIChart(w http.ResponseWriter, r *http.Request) {
	view, _, _ := s.visit(w, r, canvasSize(r), false)
	resp := chartResponse{
		State:      view.State(),
		Message:    view.Message,
		Title:      view.Resolution.Title,
		ChartLabel: view.Resolution.ChartLabel,
		Geometry:   view.Geometry,
	}
	if view.Series != nil {
		resp.Unit = view.Series.Unit
	}
	if view.HasLatest {
		latest := view.Latest
		resp.Latest = &latest
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPIHover(w http.ResponseWriter, r *http.Request) {
	x, err := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "x must be a number"})
		return
	}
	view, _, _ := s.visit(w, r, canvasSize(r), false)

	pt, i, ok := view.Geometry.Nearest(x)
	if !ok {
		writeJSON(w, http.StatusOK, hoverResponse{})
		return
	}
	writeJSON(w, http.StatusOK, hoverResponse{
		Found:     true,
		Index:     i,
		Timestamp: pt.Timestamp,
		Value:     pt.Value,
		Label:     chart.FormatValue(pt.Value),
		X:         pt.X,
		Y:         pt.Y,
		TooltipX:  chart.TooltipX(pt.X, tooltipWidth, view.Geometry.Size.Width),
	})
}

func (s *Server) handleAPICapabilities(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Snapshot()
	writeJSON(w, http.StatusOK, capabilitiesResponse{
		Snapshot:  snap,
		Fallback:  snap.Fallback(),
		Resources: catalog.Resources,
		Indexes:   catalog.ReferenceIndexes,
		Ranges:    model.RangeWindows,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
