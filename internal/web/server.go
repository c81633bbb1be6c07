// Package web serves the chart page and its JSON endpoints.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"time"

	"MeasureInGoods/internal/catalog"
	"MeasureInGoods/internal/chart"
	"MeasureInGoods/internal/logging"
	"MeasureInGoods/internal/model"
	"MeasureInGoods/internal/page"
	"MeasureInGoods/internal/selection"
)

//go:embed templates/*.html
var templateFS embed.FS

// Default canvas size when the client does not send one.
const (
	DefaultWidth  = 720.0
	DefaultHeight = 360.0
	maxCanvasSide = 4096.0
)

// ParamPage carries the page instance a browser tab was issued. It is
// echoed by links, forms and hover requests but kept out of canonical URLs.
const ParamPage = "page"

// Server represents the HTTP server
type Server struct {
	catalog  *catalog.Store
	pages    *page.Registry
	sessions *selection.Sessions
	tmpl     *template.Template
	mux      *http.ServeMux
}

// New creates a new server instance
func New(store *catalog.Store, pages *page.Registry, sessions *selection.Sessions) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"value":   chart.FormatValue,
		"percent": func(f float64) string { return strconv.Itoa(int(f*100+0.5)) + "%" },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		catalog:  store,
		pages:    pages,
		sessions: sessions,
		tmpl:     tmpl,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handlePage)
	s.mux.HandleFunc("GET /basket/weights", s.handleBasketWeights)
	s.mux.HandleFunc("GET /chart.svg", s.handleChartSVG)
	s.mux.HandleFunc("GET /api/chart", s.handleAPIChart)
	s.mux.HandleFunc("GET /api/hover", s.handleAPIHover)
	s.mux.HandleFunc("GET /api/capabilities", s.handleAPICapabilities)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the root handler with request logging.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Debug("%s %s %d %s", r.Method, r.URL.RequestURI(), rec.status, time.Since(start))
	})
}

// visit resolves the visitor, selection and page of a request, applies
// the selection and remembers the asset. Must run before the body is written.
// Requests that name no page and do not render one get a throwaway page.
func (s *Server) visit(w http.ResponseWriter, r *http.Request, size model.Size, render bool) (*page.View, catalog.Snapshot, string) {
	visitor := s.sessions.Get(r)
	snap := s.catalog.Snapshot()
	q := r.URL.Query()
	sel := selection.FromQuery(q, snap.Capabilities, visitor.LastAsset)

	var p *page.Page
	if id := q.Get(ParamPage); id != "" || render {
		p = s.pages.Get(id, visitor.ID)
	} else {
		p = s.pages.Transient()
		defer p.Close()
	}

	view := p.Update(r.Context(), snap.Capabilities, sel, size)
	if err := visitor.Remember(w, r, sel.Asset); err != nil {
		logging.Warning("save session: %v", err)
	}
	return view, snap, p.ID
}

// canvasSize reads w and h, falling back to the defaults.
func canvasSize(r *http.Request) model.Size {
	return model.Size{
		Width:  floatParam(r, "w", DefaultWidth),
		Height: floatParam(r, "h", DefaultHeight),
	}
}

func floatParam(r *http.Request, key string, def float64) float64 {
	v, err := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	if err != nil || v <= 0 || math.IsNaN(v) {
		return def
	}
	if v > maxCanvasSide {
		return maxCanvasSide
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("encode response: %v", err)
	}
}
