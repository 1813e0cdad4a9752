package http

import (
	"context"
	"crypto/rsa"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/powerviz/plant-data-api/internal/domain"
)

type contextKey string

const userIDKey contextKey = "user_id"

// userIDFrom returns the caller identity attached by the request-log
// middleware, or "anonymous" outside of it.
func userIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return "anonymous"
}

// identify derives a caller identity from the X-API-Key header. The key is
// not validated here; the first eight characters serve as an audit handle.
func identify(r *http.Request) string {
	key := r.Header.Get("X-API-Key")
	if key == "" {
		return "anonymous"
	}
	if len(key) > 8 {
		key = key[:8]
	}
	return key
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// withRequestLog logs every request with its duration and records an audit
// event for it, tagging the request context with the caller identity.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID := identify(r)
		ctx := context.WithValue(r.Context(), userIDKey, userID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		duration := time.Since(start)
		s.logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", duration,
		)

		status := "SUCCESS"
		if rec.status >= 400 {
			status = "FAILURE"
		}
		event := domain.NewAuditEvent(userID, r.Method, r.URL.Path, status,
			fmt.Sprintf("Status: %d, Duration: %s", rec.status, duration))
		if err := s.audit.Record(ctx, event); err != nil {
			s.logger.Warn("audit record failed", "error", err)
		}
	})
}

// withRecovery converts panics into a generic 500 so no internals leak to
// the client.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.logger.Error("handler panic", "path", r.URL.Path, "panic", v)
				event := domain.NewAuditEvent(userIDFrom(r.Context()), "API_ERROR", r.URL.Path,
					"FAILURE", fmt.Sprintf("panic: %v", v))
				if err := s.audit.Record(r.Context(), event); err != nil {
					s.logger.Warn("audit record failed", "error", err)
				}
				writeError(w, http.StatusInternalServerError, "An internal server error occurred.")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withCORS allows browser clients from the configured origins, answering
// preflight requests directly.
func withCORS(allowedOrigins []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && slices.Contains(allowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticator verifies RS256 bearer tokens on the API routes. With no
// public key configured it passes every request through.
type authenticator struct {
	key    *rsa.PublicKey
	logger *slog.Logger
}

func newAuthenticator(pemKey string, logger *slog.Logger) (*authenticator, error) {
	if pemKey == "" {
		return &authenticator{logger: logger}, nil
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, fmt.Errorf("parse jwt public key: %w", err)
	}
	return &authenticator{key: key, logger: logger}, nil
}

func (a *authenticator) guard(next http.Handler) http.Handler {
	if a.key == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
			}
			return a.key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
		if err != nil || !token.Valid {
			a.logger.Warn("rejected bearer token", "error", err)
			writeError(w, http.StatusUnauthorized, "invalid authentication credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}
