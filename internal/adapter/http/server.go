package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/powerviz/plant-data-api/internal/config"
	"github.com/powerviz/plant-data-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Multipart uploads are buffered in memory up to this size; eGRID workbooks
// run to a few tens of megabytes.
const maxUploadBytes = 64 << 20

// PlantService is the application surface the HTTP layer drives.
type PlantService interface {
	Ingest(ctx context.Context, userID, filename string, contents []byte) (domain.UploadResult, error)
	TopPlants(ctx context.Context, state string, limit int) []domain.PlantAggregate
	States(ctx context.Context) []string
	CheckReadiness(ctx context.Context) error
}

// Server exposes the power-plant API plus health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer   *http.Server
	svc          PlantService
	audit        domain.AuditSink
	logger       *slog.Logger
	defaultLimit int
}

// NewServer wires routes and middleware from the configuration. It fails
// only when a JWT public key is configured but does not parse.
func NewServer(cfg *config.Config, svc PlantService, audit domain.AuditSink, logger *slog.Logger) (*Server, error) {
	mux := http.NewServeMux()

	s := &Server{
		svc:          svc,
		audit:        audit,
		logger:       logger,
		defaultLimit: cfg.DefaultLimit,
	}

	auth, err := newAuthenticator(cfg.JWTPublicKey, logger)
	if err != nil {
		return nil, fmt.Errorf("configure auth: %w", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /{$}", s.handleRoot)

	mux.Handle("POST /api/power-plants/upload", auth.guard(http.HandlerFunc(s.handleUpload)))
	mux.Handle("GET /api/power-plants/states", auth.guard(http.HandlerFunc(s.handleStates)))
	mux.Handle("GET /api/power-plants/{$}", auth.guard(http.HandlerFunc(s.handleTopPlants)))

	handler := s.withRecovery(withCORS(cfg.CORSAllowedOrigins, s.withRequestLog(mux)))

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
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

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Power Plant API"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.svc.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing form field \"file\"")
		return
	}
	defer file.Close()

	contents, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	result, err := s.svc.Ingest(r.Context(), userIDFrom(r.Context()), header.Filename, contents)
	if err != nil {
		var missing *domain.MissingColumnsError
		switch {
		case errors.Is(err, domain.ErrUnsupportedFileType),
			errors.Is(err, domain.ErrNoUsableRows),
			errors.As(err, &missing):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("upload failed", "file", header.Filename, "error", err)
			writeError(w, http.StatusInternalServerError, "An internal server error occurred.")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	states := s.svc.States(r.Context())
	if states == nil {
		states = []string{}
	}
	writeJSON(w, http.StatusOK, states)
}

func (s *Server) handleTopPlants(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		writeError(w, http.StatusBadRequest, "state query parameter is required")
		return
	}

	limit := s.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	plants := s.svc.TopPlants(r.Context(), state, limit)
	if plants == nil {
		plants = []domain.PlantAggregate{}
	}
	writeJSON(w, http.StatusOK, plants)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
