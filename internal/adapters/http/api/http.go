// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/bilanz/internal/adapters/render/table"
	"github.com/okian/bilanz/internal/domain/model"
	"github.com/okian/bilanz/internal/domain/quote"
	"github.com/okian/bilanz/internal/domain/validation"
	"github.com/okian/bilanz/pkg/logger"
)

// Analyzer runs the analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, raw []validation.RawPeriod) (model.ComparisonSet, error)
	ExportCSV(ctx context.Context, raw []validation.RawPeriod) ([]byte, error)
	ExportPDF(ctx context.Context, raw []validation.RawPeriod) ([]byte, error)
}

// IndexProvider exposes the live index history.
type IndexProvider interface {
	IndexHistory(ctx context.Context) []quote.Sample
	IndexSymbols() []string
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Analyzer
	IndexProvider
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps Dependencies

	csvFileName  string
	pdfFileName  string
	maxBodyBytes int64
	logger       logger.Logger

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:          deps,
		csvFileName:   defaultCSVFileName,
		pdfFileName:   defaultPDFFileName,
		maxBodyBytes:  defaultMaxBodyBytes,
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	return s
}

// Register attaches all API routes and the request middleware to router.
func (s *Server) Register(router *mux.Router) {
	if router == nil {
		panic("router is nil")
	}
	router.Use(RequestID, AccessLog(s.logger), Metrics, Recovery(s.logger))

	router.HandleFunc("/healthz", s.healthHandler.HandleHealth).Methods(http.MethodGet)
	router.HandleFunc("/stats", s.statsHandler.HandleStats).Methods(http.MethodGet)

	// Full paths on the root router: a subrouter reports a method mismatch
	// as 404.
	router.HandleFunc(apiPrefix+"/ratios", s.HandleRatios).Methods(http.MethodPost)
	router.HandleFunc(apiPrefix+"/export/csv", s.HandleExportCSV).Methods(http.MethodPost)
	router.HandleFunc(apiPrefix+"/export/pdf", s.HandleExportPDF).Methods(http.MethodPost)
	router.HandleFunc(apiPrefix+"/index", s.HandleIndex).Methods(http.MethodGet)

	if router.MethodNotAllowedHandler == nil {
		router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	}
}

const apiPrefix = "/api/v1"

// methodNotAllowed answers a known path requested with the wrong method.
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{
		Code:    "method_not_allowed",
		Message: r.Method + " is not allowed on " + r.URL.Path,
	})
}

// ratiosResponse is returned by POST /api/v1/ratios.
type ratiosResponse struct {
	Periods []model.DerivedPeriod `json:"periods"`
	Table   *table.Artifact       `json:"table"`
}

// indexResponse is returned by GET /api/v1/index.
type indexResponse struct {
	Symbols []string       `json:"symbols"`
	Samples []quote.Sample `json:"samples"`
}

type errorResponse struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Period      string `json:"period,omitempty"`
	Field       string `json:"field,omitempty"`
	Ratio       string `json:"ratio,omitempty"`
	Denominator string `json:"denominator,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
