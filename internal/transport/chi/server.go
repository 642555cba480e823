package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/flagsearch/internal/domain"
	domfeature "github.com/kailas-cloud/flagsearch/internal/domain/feature"
	featureuc "github.com/kailas-cloud/flagsearch/internal/usecase/feature"
	healthuc "github.com/kailas-cloud/flagsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/flagsearch/internal/usecase/search"
)

// maxBodyBytes caps request bodies; a record with a full description fits comfortably.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the admin feature API.
type Server struct {
	features      *featureuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	features *featureuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		features: features,
		search:   search,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeFeatureNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, ErrorCodeFeatureAlreadyExists),
		sentinelHandler(domain.ErrInvalidRecord, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, ErrorCodeInvalidFilter),
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/admin", func(r chi.Router) {
		r.Get("/search/features", s.SearchFeatures)

		r.Route("/features/{name}", func(r chi.Router) {
			r.Put("/", s.UpsertFeature)
			r.Get("/", s.GetFeature)
			r.Delete("/", s.DeleteFeature)
			r.Post("/archive", s.ArchiveFeature)
			r.Post("/revive", s.ReviveFeature)
			r.Post("/environments/{env}/on", s.toggleEnvironment(true))
			r.Post("/environments/{env}/off", s.toggleEnvironment(false))
			r.Post("/environments/{env}/seen", s.MarkSeen)
			r.Post("/tags", s.AddTag)
			r.Delete("/tags/{type}/{value}", s.RemoveTag)
		})
	})
}

// Handler returns a router with all endpoints and no middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

// UpsertFeature handles PUT /api/admin/features/{name}.
func (s *Server) UpsertFeature(w http.ResponseWriter, r *http.Request) {
	name, ok := s.pathParam(w, r, "name")
	if !ok {
		return
	}

	var req UpsertFeatureRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	tags, err := tagsFromAPI(req.Tags)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	draft := featureuc.Draft{
		Name:         name,
		Type:         req.Type,
		Project:      req.Project,
		Description:  req.Description,
		Archived:     req.Archived,
		Tags:         tags,
		Environments: environmentsFromAPI(req.Environments),
	}
	if req.CreatedAt != nil {
		draft.CreatedAt = *req.CreatedAt
	}

	rec, created, err := s.features.Upsert(r.Context(), &draft)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, featureToAPI(&rec))
}

// GetFeature handles GET /api/admin/features/{name}.
func (s *Server) GetFeature(w http.ResponseWriter, r *http.Request) {
	name, ok := s.pathParam(w, r, "name")
	if !ok {
		return
	}
	rec, err := s.features.Get(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, featureToAPI(&rec))
}

// DeleteFeature handles DELETE /api/admin/features/{name}.
func (s *Server) DeleteFeature(w http.ResponseWriter, r *http.Request) {
	name, ok := s.pathParam(w, r, "name")
	if !ok {
		return
	}
	if err := s.features.Delete(r.Context(), name); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ArchiveFeature handles POST /api/admin/features/{name}/archive.
func (s *Server) ArchiveFeature(w http.ResponseWriter, r *http.Request) {
	name, ok := s.pathParam(w, r, "name")
	if !ok {
		return
	}
	s.writeRecord(w, func() (domfeature.Record, error) {
		return s.features.Archive(r.Context(), name)
	})
}

// ReviveFeature handles POST /api/admin/features/{name}/revive.
func (s *Server) ReviveFeature(w http.ResponseWriter, r *http.Request) {
	name, ok := s.pathParam(w, r, "name")
	if !ok {
		return
	}
	s.writeRecord(w, func() (domfeature.Record, error) {
		return s.features.Revive(r.Context(), name)
	})
}

// toggleEnvironment handles POST /api/admin/features/{name}/environments/{env}/on|off.
func (s *Server) toggleEnvironment(enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, ok := s.pathParam(w, r, "name")
		if !ok {
			return
		}
		env, ok := s.pathParam(w, r, "env")
		if !ok {
			return
		}
		s.writeRecord(w, func() (domfeature.Record, error) {
			return s.features.SetEnvironment(r.Context(), name, env, enabled)
		})
	}
}

// MarkSeen handles POST /api/admin/features/{name}/environments/{env}/seen.
func (s *Server) MarkSeen(w http.ResponseWriter, r *http.Request) {
	name, ok := s.pathParam(w, r, "name")
	if !ok {
		return
	}
	env, ok := s.pathParam(w, r, "env")
	if !ok {
		return
	}
	s.writeRecord(w, func() (domfeature.Record, error) {
		return s.features.MarkSeen(r.Context(), name, env)
	})
}

// AddTag handles POST /api/admin/features/{name}/tags.
func (s *Server) AddTag(w http.ResponseWriter, r *http.Request) {
	name, ok := s.pathParam(w, r, "name")
	if !ok {
		return
	}

	var req Tag
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	tag, err := domfeature.NewTag(req.Type, req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	s.writeRecord(w, func() (domfeature.Record, error) {
		return s.features.AddTag(r.Context(), name, tag)
	})
}

// RemoveTag handles DELETE /api/admin/features/{name}/tags/{type}/{value}.
func (s *Server) RemoveTag(w http.ResponseWriter, r *http.Request) {
	name, ok := s.pathParam(w, r, "name")
	if !ok {
		return
	}
	tagType, ok := s.pathParam(w, r, "type")
	if !ok {
		return
	}
	value, ok := s.pathParam(w, r, "value")
	if !ok {
		return
	}
	tag, err := domfeature.NewTag(tagType, value)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	s.writeRecord(w, func() (domfeature.Record, error) {
		return s.features.RemoveTag(r.Context(), name, tag)
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) writeRecord(w http.ResponseWriter, fn func() (domfeature.Record, error)) {
	rec, err := fn()
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, featureToAPI(&rec))
}

// pathParam binds a required simple-style path parameter, writing a 400 on failure.
func (s *Server) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter "+name)
		return "", false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-safe error message without exposing internals.
// Validation failures carry their full message; other sentinels only their own text.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRecord) || errors.Is(err, domain.ErrInvalidFilter) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
