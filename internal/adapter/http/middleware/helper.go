package middleware

import (
	"encoding/json"
	"net/http"
)

// errorResponse writes {"error": message}. Error bodies are never cached and
// 401s advertise the bearer scheme.
func errorResponse(w http.ResponseWriter, status int, message string) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	if status == http.StatusUnauthorized {
		h.Set("WWW-Authenticate", `Bearer realm="dispatch"`)
	}
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
