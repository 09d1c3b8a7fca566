package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yodda/internal/logger"
)

const storagePingTimeout = 2 * time.Second

type readyzResponse struct {
	Ready   bool   `json:"ready"`
	Storage string `json:"storage"`
}

// Readyz is ready once the durable storage answers. Memory storage is always ready.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pingStorage(r.Context(), d); err != nil {
			d.Logger.Warn("readiness check failed", logger.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Storage: d.StorageMode})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true, Storage: d.StorageMode})
	}
}

func pingStorage(ctx context.Context, d deps.Deps) error {
	if d.Storage == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, storagePingTimeout)
	defer cancel()
	return d.Storage.Ping(ctx)
}
