// Package chi exposes the HTTP API surface: search, direct analysis, health.
package chi

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/soycharroup/memoryreel/internal/domain"
	"github.com/soycharroup/memoryreel/internal/domain/search/query"
	analysisuc "github.com/soycharroup/memoryreel/internal/usecase/analysis"
	healthuc "github.com/soycharroup/memoryreel/internal/usecase/health"
	searchuc "github.com/soycharroup/memoryreel/internal/usecase/search"
)

// Server routes API calls to the search coordinator and the orchestrator.
type Server struct {
	search         *searchuc.Service
	analysis       *analysisuc.Service
	health         *healthuc.Service
	searchDeadline time.Duration
	validate       *validator.Validate
	logger         *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(
	search *searchuc.Service,
	analysis *analysisuc.Service,
	health *healthuc.Service,
	searchDeadline time.Duration,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:         search,
		analysis:       analysis,
		health:         health,
		searchDeadline: searchDeadline,
		validate:       validator.New(),
		logger:         logger,
	}
}

// Routes mounts all handlers onto the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/analyze", s.handleAnalyze)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	filters, err := filterSetFromRequest(req.Filters)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	q, err := query.New(req.Text, filters, req.Page, req.PageSize, req.Provider)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	// Single end-to-end deadline; in-flight sub-operations are abandoned
	// once it passes.
	ctx, cancel := context.WithTimeout(r.Context(), s.searchDeadline)
	defer cancel()

	set, err := s.search.Search(ctx, &q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFromSet(set))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid request body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	analysisReq, err := analysisRequestFromDTO(req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.searchDeadline)
	defer cancel()

	res, err := s.analysis.Execute(ctx, analysisReq)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponseFromResult(res))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, healthResponseFromReport(report))
}

func analysisRequestFromDTO(req analyzeRequest) (domain.AnalysisRequest, error) {
	capability := domain.Capability(req.Capability)

	if capability == domain.CapabilityQueryInterpretation {
		return domain.NewInterpretationRequest(req.Text, req.Provider)
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		return domain.AnalysisRequest{}, errors.Join(domain.ErrValidation, err)
	}
	return domain.NewImageRequest(capability, image, req.Provider)
}

// writeDomainError maps the error taxonomy to stable API codes. Internal
// provider identities and raw errors never reach the response body.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrCapabilityUnsupported):
		writeError(w, http.StatusNotImplemented, "capability_unsupported",
			"no provider available for the requested capability")
	case errors.Is(err, domain.ErrProviderExhausted):
		writeError(w, http.StatusBadGateway, "provider_exhausted",
			"analysis providers are currently unable to serve this request")
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service_unavailable",
			"search is temporarily unavailable")
	case errors.Is(err, domain.ErrConfiguration):
		writeError(w, http.StatusInternalServerError, "configuration_error", "service misconfigured")
	default:
		s.logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
