package middleware

import (
	"net/http"
	"time"
)

// Logging writes one record per request once the handler returns.
// Server errors are logged at warn level, everything else at debug.
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration", time.Since(start).String(),
			"remote", r.RemoteAddr,
		}
		if rw.statusCode >= http.StatusInternalServerError {
			m.log.Warn(r.Context(), "request failed", args...)
			return
		}
		m.log.Debug(r.Context(), "request completed", args...)
	})
}
