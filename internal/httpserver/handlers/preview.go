package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/yodda/internal/domain"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
)

// Preview fetches page metadata for ?url=. It answers 204 when nothing could
// be extracted; fetch failures are not errors.
func Preview(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := domain.NormalizeURL(r.URL.Query().Get("url"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "url must be an http(s) address")
			return
		}

		p, ok := d.Previews.Fetch(r.Context(), target)
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}
