package middleware

import (
	"net/http"

	"github.com/Temutjin2k/ambulance-dispatch/internal/adapter/session"
	"github.com/google/uuid"
)

const HeaderSessionID = "X-Session-ID"

// Session binds the request to the caller's X-Session-ID. A caller without one
// gets a fresh id in the response header and should send it back next time.
func (m *Middleware) Session(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderSessionID)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(HeaderSessionID, id)

			sess, err := session.New(store, id)
			if err != nil {
				errorResponse(w, http.StatusBadRequest, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), sess)))
		})
	}
}
