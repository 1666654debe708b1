package common

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// BearerToken extracts <token> from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", NewError(ErrUnauthenticated, "Access denied. No token provided.")
	}

	// header = "Bearer <token>"
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", NewError(ErrUnauthenticated, "Access denied. Malformed authorization header.")
	}
	return parts[1], nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// LoggingMiddleware logs every request with its status and latency.
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			fields := []zap.Field{
				zap.Int("status", rec.status),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.String("user-agent", r.UserAgent()),
				zap.Duration("latency", time.Since(start)),
			}
			if rec.status >= http.StatusInternalServerError {
				logger.Error("Request failed", fields...)
			} else {
				logger.Info("Request served", fields...)
			}
		})
	}
}
