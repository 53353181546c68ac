// Package http serves the REST surface: one chat endpoint running a full
// routing turn, the session management endpoints, and the operational
// endpoints (health, metrics, OpenAPI document, Swagger UI).
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/switchyard-ai/switchyard"
	"github.com/switchyard-ai/switchyard/api"
	"github.com/switchyard-ai/switchyard/internal/logging"
	"github.com/switchyard-ai/switchyard/pkg/domain"
	"github.com/switchyard-ai/switchyard/pkg/observability"
	"github.com/switchyard-ai/switchyard/pkg/session"
)

// Engine defines the turn-execution surface the server binds to.
type Engine interface {
	Turn(ctx context.Context, req switchyard.TurnRequest) (*switchyard.TurnResult, error)
	Sessions() *session.Manager
	Agents() []domain.AgentName
}

const defaultListLimit = 50

// Server holds the handler dependencies.
type Server struct {
	engine   Engine
	logger   *slog.Logger
	metrics  *observability.HTTPMetrics
	gatherer prometheus.Gatherer
	spec     []byte
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the access-log and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics instruments requests with the given collectors.
func WithMetrics(m *observability.HTTPMetrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithGatherer sets the registry served at /metrics. Defaults to the global
// prometheus registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler builds the HTTP handler. The embedded OpenAPI document is parsed
// and validated here, so a malformed contract fails startup rather than the
// first /openapi.yaml request.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	s := &Server{
		engine:   engine,
		logger:   logging.NewNop(),
		gatherer: prometheus.DefaultGatherer,
		spec:     api.OpenAPISpec,
	}
	for _, opt := range opts {
		opt(s)
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(s.spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(AccessLog(s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/openapi.yaml", s.openapi)
	r.Get("/swagger", s.swagger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", s.chat)
		r.Get("/sessions", s.listSessions)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Get("/summary", s.getSessionSummary)
			r.Post("/refresh", s.refreshSession)
		})
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// -- Wire types --

type chatRequest struct {
	Message   string            `json:"message"`
	SessionID string            `json:"session_id,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
}

type diagnostics struct {
	Iterations int      `json:"iterations"`
	AgentsUsed []string `json:"agents_used"`
	ElapsedMS  int64    `json:"elapsed_ms"`
}

type chatResponse struct {
	SessionID            string      `json:"session_id"`
	Agent                string      `json:"agent"`
	Reply                string      `json:"reply"`
	NeedsClarification   bool        `json:"needs_clarification"`
	ConversationComplete bool        `json:"conversation_complete"`
	NewSession           bool        `json:"new_session"`
	Diagnostics          diagnostics `json:"diagnostics"`
}

type sessionList struct {
	Sessions []domain.Summary `json:"sessions"`
	Count    int              `json:"count"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// -- Handlers --

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid request body", false)
		return
	}

	res, err := s.engine.Turn(r.Context(), switchyard.TurnRequest{
		SessionID: body.SessionID,
		Message:   body.Message,
		Context:   body.Context,
	})
	if err != nil {
		s.turnError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, chatResponse{
		SessionID:            res.SessionID,
		Agent:                string(res.Agent),
		Reply:                res.Reply,
		NeedsClarification:   res.NeedsClarification,
		ConversationComplete: res.Complete,
		NewSession:           res.New,
		Diagnostics: diagnostics{
			Iterations: res.Diagnostics.Iterations,
			AgentsUsed: res.Diagnostics.AgentsUsed,
			ElapsedMS:  res.Diagnostics.Elapsed.Milliseconds(),
		},
	})
}

// turnError maps the domain taxonomy onto status codes: invalid input 400,
// concurrent turn 409, reasoner outage 503 retryable, anything else 500.
func (s *Server) turnError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeError(w, r, http.StatusBadRequest, verr.Error(), false)
	case errors.Is(err, domain.ErrSessionBusy):
		s.writeError(w, r, http.StatusConflict,
			"another turn is running on this session; retry shortly", true)
	case domain.IsExternal(err):
		s.logger.Error("turn failed on external service", "err", err,
			"request_id", RequestIDFrom(r.Context()))
		s.writeError(w, r, http.StatusServiceUnavailable,
			"the reasoning service is unavailable; please retry", true)
	default:
		s.logger.Error("turn failed", "err", err,
			"request_id", RequestIDFrom(r.Context()))
		s.writeError(w, r, http.StatusInternalServerError, "internal error", false)
	}
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, r, http.StatusBadRequest, "limit must be a non-negative integer", false)
			return
		}
		limit = parsed
	}

	summaries, err := s.engine.Sessions().List(r.Context(), limit)
	if err != nil {
		s.logger.Error("session list failed", "err", err)
		s.writeError(w, r, http.StatusInternalServerError, "internal error", false)
		return
	}
	if summaries == nil {
		summaries = []domain.Summary{}
	}
	s.writeJSON(w, r, http.StatusOK, sessionList{Sessions: summaries, Count: len(summaries)})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.Sessions().Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.sessionError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, sess)
}

func (s *Server) getSessionSummary(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.Sessions().Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.sessionError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, sess.Summarize())
}

func (s *Server) refreshSession(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Sessions().Refresh(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.sessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Sessions().Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.sessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		s.writeError(w, r, http.StatusNotFound, "session not found", false)
	case errors.Is(err, domain.ErrSessionBusy):
		s.writeError(w, r, http.StatusConflict,
			"another turn is running on this session; retry shortly", true)
	default:
		s.logger.Error("session operation failed", "err", err,
			"request_id", RequestIDFrom(r.Context()))
		s.writeError(w, r, http.StatusInternalServerError, "internal error", false)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": switchyard.Version,
	})
}

func (s *Server) openapi(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(s.spec)
}

func (s *Server) swagger(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(swaggerHTML))
}

// -- Helpers --

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encode failed", "err", err,
			"request_id", RequestIDFrom(r.Context()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string, retryable bool) {
	s.writeJSON(w, r, status, errorResponse{Error: msg, Retryable: retryable})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Switchyard API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`
