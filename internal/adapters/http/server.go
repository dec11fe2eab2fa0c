// Package http exposes the DTMF sender as a small JSON API.
//
// The routes and request bodies are described by api/openapi.yaml; incoming
// requests for documented routes are validated against it before they reach
// a handler.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	senddtmf "github.com/aretw0/senddtmf"
	"github.com/aretw0/senddtmf/api"
	"github.com/aretw0/senddtmf/internal/logging"
	"github.com/aretw0/senddtmf/internal/metrics"
	"github.com/aretw0/senddtmf/pkg/ctrlfile"
	"github.com/aretw0/senddtmf/pkg/domain"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes bounds POST /api/dtmf bodies.
const maxBodyBytes = 4 << 10

// Sender delivers a sequence to the control path.
type Sender interface {
	Send(ctx context.Context, digits string) (ctrlfile.Report, error)
}

// DtmfRequest is the body of POST /api/dtmf.
type DtmfRequest struct {
	Digits string `json:"digits"`
}

// DtmfResponse is returned when the sequence was written.
type DtmfResponse struct {
	Status  string `json:"status"`
	Digits  string `json:"digits"`
	Bytes   int    `json:"bytes"`
	Blocked bool   `json:"blocked"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error    string `json:"error"`
	Outcome  string `json:"outcome"`
	ExitCode int    `json:"exit_code"`
}

// Server implements the API handlers.
type Server struct {
	Sender  Sender
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics serves the recorder at /metrics.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Server) {
		s.Metrics = r
	}
}

// WithLogger configures the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler for sender.
// It fails only if the embedded OpenAPI document is invalid.
func NewHandler(sender Sender, opts ...Option) (http.Handler, error) {
	server := &Server{Sender: sender, Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(server)
	}

	router, err := loadRouter()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(validateRequests(router))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(api.Spec)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api/version", server.GetVersion)
	r.Post("/api/dtmf", server.SendDtmf)
	if server.Metrics != nil {
		r.Handle("/metrics", server.Metrics.Handler())
	}

	return r, nil
}

func loadRouter() (routers.Router, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(api.Spec)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, err
	}
	return gorillamux.NewRouter(doc)
}

// validateRequests rejects requests to documented routes that do not match the OpenAPI document.
// Undocumented routes (metrics) pass through untouched.
func validateRequests(router routers.Router) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{
					Error:    err.Error(),
					Outcome:  "invalid_request",
					ExitCode: domain.ExitUsage,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetVersion handles GET /api/version.
func (s *Server) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "send-dtmf",
		"version": senddtmf.Version,
	})
}

// SendDtmf handles POST /api/dtmf.
func (s *Server) SendDtmf(w http.ResponseWriter, r *http.Request) {
	var req DtmfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:    "invalid request body: " + err.Error(),
			Outcome:  "invalid_request",
			ExitCode: domain.ExitUsage,
		})
		return
	}

	rep, err := s.Sender.Send(r.Context(), req.Digits)
	if err != nil {
		status := StatusCode(err)
		s.Logger.Warn("DTMF request failed", "status", status, "error", err)
		writeJSON(w, status, ErrorResponse{
			Error:    err.Error(),
			Outcome:  metrics.Outcome(err),
			ExitCode: domain.ExitCode(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, DtmfResponse{
		Status:  "sent",
		Digits:  req.Digits,
		Bytes:   rep.Written,
		Blocked: rep.Blocked,
	})
}

// StatusCode maps a send failure to the HTTP status reported for it.
func StatusCode(err error) int {
	switch domain.ExitCode(err) {
	case domain.ExitOK:
		return http.StatusOK
	case domain.ExitPathNotFound:
		return http.StatusServiceUnavailable
	case domain.ExitPermissionDenied:
		return http.StatusForbidden
	case domain.ExitOpenFailed:
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case domain.ExitWriteFailed:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
