package mw

import (
	"encoding/json"
	"net/http"
)

// reject writes the API error envelope used by every handler.
func reject(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(status)})
}
