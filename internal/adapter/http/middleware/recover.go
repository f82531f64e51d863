package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

// Recover turns a handler panic into a 500 and closes the connection.
// The panic value is logged, not returned to the client.
func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}
			m.log.Warn(r.Context(), "recovered from panic",
				"panic", fmt.Sprint(p),
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			w.Header().Set("Connection", "close")
			errorResponse(w, http.StatusInternalServerError, "internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}
