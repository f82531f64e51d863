package middleware

import (
	"net/http"

	wrap "github.com/Temutjin2k/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestID takes the caller's X-Request-ID or generates one, echoes it back
// and attaches it to the log context.
func (m *Middleware) RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		ctx := wrap.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
