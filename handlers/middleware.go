// Package handlers provides the HTTP API for the icon generation
// backend. This file contains the CORS, authentication, and request
// logging middleware.
package handlers

import (
	"net/http"
	"time"

	"icon_backend/core"
	"icon_backend/logging"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHeader carries the API password for protected endpoints.
const PasswordHeader = "X-API-Password"

// CORSMiddleware adds CORS headers for the configured origin and
// answers preflight requests.
//
// Thread-safe for concurrent HTTP requests.
type CORSMiddleware struct {
	allowedOrigin string
}

// NewCORSMiddleware creates a CORS middleware. An empty origin defaults
// to "*".
func NewCORSMiddleware(allowedOrigin string) *CORSMiddleware {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return &CORSMiddleware{allowedOrigin: allowedOrigin}
}

// Handler wraps next with CORS headers and preflight handling.
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", m.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+PasswordHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware guards endpoints with a bcrypt password hash. When no
// hash is configured the middleware passes every request through.
type AuthMiddleware struct {
	passwordHash string
	logger       *logging.Logger
}

// NewAuthMiddleware creates an auth middleware from a bcrypt hash.
func NewAuthMiddleware(passwordHash string, logger *logging.Logger) *AuthMiddleware {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AuthMiddleware{
		passwordHash: passwordHash,
		logger:       logger.Named("auth"),
	}
}

// Enabled reports whether a password hash is configured.
func (m *AuthMiddleware) Enabled() bool {
	return m.passwordHash != ""
}

// Handler wraps next with password verification. Comparison uses bcrypt
// so it is constant-time with respect to the stored hash.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	if !m.Enabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		password := r.Header.Get(PasswordHeader)
		if password == "" {
			m.logger.Debug("request missing password header", zap.String("path", r.URL.Path))
			writeErrorStatus(w, unauthorized())
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(m.passwordHash), []byte(password)); err != nil {
			m.logger.Warn("request with wrong password", zap.String("path", r.URL.Path))
			writeErrorStatus(w, unauthorized())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// unauthorized builds the classified payload for a rejected request.
func unauthorized() core.ClassifiedError {
	return core.ClassifiedError{
		Category:    core.CategoryAuthentication,
		Message:     "Invalid or missing API password.",
		StatusCode:  http.StatusUnauthorized,
		Code:        "AUTHENTICATION_ERROR",
		Recoverable: core.Recoverable(core.CategoryAuthentication),
	}
}

// LoggingMiddleware logs every request with method, path, status, and
// duration.
type LoggingMiddleware struct {
	logger    *logging.Logger
	skipPaths map[string]bool
}

// NewLoggingMiddleware creates a request logging middleware. Requests
// to skipPaths are not logged, e.g. health probes.
func NewLoggingMiddleware(logger *logging.Logger, skipPaths ...string) *LoggingMiddleware {
	if logger == nil {
		logger = logging.NewNop()
	}
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return &LoggingMiddleware{
		logger:    logger.Named("http"),
		skipPaths: skip,
	}
}

// Handler wraps next with request logging.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		m.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr))
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

// WriteHeader captures the first status code written.
func (w *statusRecorder) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

// Write ensures the header is recorded before the body.
func (w *statusRecorder) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Chain applies middleware right to left, so the first argument is the
// outermost wrapper.
func Chain(h http.Handler, wrappers ...func(http.Handler) http.Handler) http.Handler {
	for i := len(wrappers) - 1; i >= 0; i-- {
		h = wrappers[i](h)
	}
	return h
}
