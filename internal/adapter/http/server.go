package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/hydrogen-sites/internal/domain"
	"github.com/couchcryptid/hydrogen-sites/internal/pipeline"
	"github.com/couchcryptid/hydrogen-sites/internal/ranking"
	"github.com/couchcryptid/hydrogen-sites/internal/report"
	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// SiteService is the read side the API is served from. *pipeline.Analyzer
// implements it.
type SiteService interface {
	ReadinessChecker
	Analyze(view domain.View, metric domain.Metric) pipeline.Analysis
	Export(w io.Writer, view domain.View, metric domain.Metric, f report.Format, compress bool) (report.Document, error)
	Sites(view domain.View) []domain.Site
	Site(id int) (domain.Site, bool)
	EnergyMix() []domain.EnergyShare
}

// Server exposes the site API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        SiteService
	logger     *slog.Logger
}

// NewServer creates an HTTP server. Every route is wrapped in panic recovery
// and CORS for the given origins.
func NewServer(addr string, svc SiteService, allowedOrigins []string, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/sites", s.handleSites)
	mux.HandleFunc("GET /api/v1/sites/{id}", s.handleSite)
	mux.HandleFunc("GET /api/v1/analysis", s.handleAnalysis)
	mux.HandleFunc("GET /api/v1/export", s.handleExport)
	mux.HandleFunc("GET /api/v1/energy-mix", s.handleEnergyMix)

	var h http.Handler = mux
	h = handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.ExposedHeaders([]string{"Content-Disposition", "X-Report-Id"}),
	)(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
	)(h)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type sitesResponse struct {
	View  domain.View   `json:"view"`
	Count int           `json:"count"`
	Sites []domain.Site `json:"sites"`
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	view := domain.ParseView(r.URL.Query().Get("view"))
	sites := s.svc.Sites(view)
	writeJSON(w, http.StatusOK, sitesResponse{View: view, Count: len(sites), Sites: sites})
}

func (s *Server) handleSite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "site id must be an integer")
		return
	}
	site, ok := s.svc.Site(id)
	if !ok {
		writeError(w, http.StatusNotFound, "site not found")
		return
	}
	writeJSON(w, http.StatusOK, site)
}

type analysisResponse struct {
	View     domain.View      `json:"view"`
	Metric   domain.Metric    `json:"metric"`
	Count    int              `json:"count"`
	Sorted   []domain.Site    `json:"sorted"`
	Top      []domain.Site    `json:"top"`
	Stats    *ranking.Stats   `json:"stats"`
	Sections []report.Section `json:"sections"`
	Text     string           `json:"text"`
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	a := s.svc.Analyze(domain.ParseView(q.Get("view")), domain.ParseMetric(q.Get("metric")))

	writeJSON(w, http.StatusOK, analysisResponse{
		View:     a.View,
		Metric:   a.Metric,
		Count:    len(a.Ranking.Sorted),
		Sorted:   a.Ranking.Sorted,
		Top:      a.Ranking.Top,
		Stats:    a.Ranking.Stats,
		Sections: a.Report.Sections,
		Text:     a.Report.Text(),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := report.FormatText
	if v := q.Get("format"); v != "" {
		var err error
		if f, err = report.ParseFormat(v); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var compress bool
	if v := q.Get("gzip"); v != "" {
		var err error
		if compress, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, "gzip must be a boolean")
			return
		}
	}

	var buf bytes.Buffer
	doc, err := s.svc.Export(&buf, domain.ParseView(q.Get("view")), domain.ParseMetric(q.Get("metric")), f, compress)
	if err != nil {
		s.logger.Error("export failed", "error", err, "format", f)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	contentType := f.ContentType()
	if compress {
		contentType = "application/gzip"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.FileName(f, compress)+`"`)
	w.Header().Set("X-Report-Id", doc.ID)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("write export response failed", "error", err)
	}
}

func (s *Server) handleEnergyMix(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"energy_mix": s.svc.EnergyMix()})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
