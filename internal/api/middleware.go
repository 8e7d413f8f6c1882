package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/identity"
	"github.com/vytor/brainyflash/internal/logger"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

type contextKey string

const identityContextKey contextKey = "identity"

func identityFromContext(ctx context.Context) (identity.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(identity.Identity)
	return id, ok
}

// userID returns the caller's user id, or "" for anonymous requests.
func userID(r *http.Request) string {
	id, _ := identityFromContext(r.Context())
	return id.UserID
}

// identityMiddleware verifies a bearer token when one is sent. Requests without an
// Authorization header continue anonymously; a bad token is rejected outright.
func (s *Server) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromContext(r.Context())
		token, ok := identity.BearerToken(header)
		if !ok {
			handleError(w, r, errors.NewUnauthenticatedError("malformed Authorization header"))
			return
		}
		id, err := s.Verifier.Verify(r.Context(), token)
		if err != nil {
			log.Debug("token rejected: %v", err)
			handleError(w, r, errors.NewUnauthenticatedError("invalid or expired token"))
			return
		}

		// Profiles are created on the first authenticated request.
		if _, err := s.ProfileService.EnsureProfile(r.Context(), id); err != nil {
			handleError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, id)
		ctx = logger.NewContext(ctx, log.WithField("user_id", id.UserID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireIdentity rejects anonymous callers.
func requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identityFromContext(r.Context()); !ok {
			handleError(w, r, errors.NewUnauthenticatedError("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// generateRequestID creates a random request ID.
func generateRequestID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// loggingMiddleware logs HTTP requests with timing, status codes, and request IDs.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}

		// Create a request-scoped logger with the request ID
		log := logger.Default().WithFields(map[string]any{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})

		// Add remote address if available
		if r.RemoteAddr != "" {
			log = log.WithField("remote_addr", r.RemoteAddr)
		}

		// Store logger in context
		ctx := logger.NewContext(r.Context(), log)
		r = r.WithContext(ctx)

		// Add request ID to response headers
		w.Header().Set("X-Request-ID", requestID)

		// Wrap response writer to capture status
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		log.Debug("request started")

		// Call the next handler
		next.ServeHTTP(wrapped, r)

		// Log the completed request
		duration := time.Since(start)
		log = log.WithFields(map[string]any{
			"status":      wrapped.status,
			"size":        wrapped.size,
			"duration_ms": duration.Milliseconds(),
		})

		if wrapped.status >= 500 {
			log.Error("request completed with server error")
		} else if wrapped.status >= 400 {
			log.Warn("request completed with client error")
		} else {
			log.Info("request completed")
		}
	})
}

// recoveryMiddleware recovers from panics and logs them.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log := logger.FromContext(r.Context())
				log.Error("panic recovered: %v", rec)
				writeJSON(w, http.StatusInternalServerError, errorBody(errors.ErrCodeInternal, "internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// timeoutMiddleware wraps a handler with a timeout. Timed out requests get a
// 503 with a JSON error body.
func timeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	body, _ := json.Marshal(errorBody(errors.ErrCodeTimeout, "request timed out"))
	return func(next http.Handler) http.Handler {
		th := http.TimeoutHandler(next, timeout, string(body))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			th.ServeHTTP(timeoutResponseWriter{w}, r)
		})
	}
}

// timeoutResponseWriter labels the TimeoutHandler's own 503 body as JSON.
type timeoutResponseWriter struct {
	http.ResponseWriter
}

func (w timeoutResponseWriter) WriteHeader(code int) {
	if code == http.StatusServiceUnavailable && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.ResponseWriter.WriteHeader(code)
}
