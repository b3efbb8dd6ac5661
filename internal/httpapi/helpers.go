package httpapi

import (
	"encoding/json"
	"net/http"
)

// writeJSON is the 200-path sibling of WriteJSON: no status override,
// no envelope, just the payload.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// methodMux dispatches one path by HTTP verb. Each route in the mux
// declares the verbs it serves; anything else is a plain 405.
func methodMux(m map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h, ok := m[r.Method]; ok {
			h(w, r)
			return
		}
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
