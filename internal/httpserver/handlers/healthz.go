package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
)

type healthzResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
	Storage   string    `json:"storage"`
	Version   string    `json:"version,omitempty"`
	Commit    string    `json:"commit,omitempty"`
	BuildDate string    `json:"build_date,omitempty"`
	GoVersion string    `json:"go_version,omitempty"`
}

// Healthz reports liveness and build info. Storage is only named, never
// pinged; /readyz does that.
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := d.Now().Sub(d.StartTime).Truncate(time.Second)
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:    "ok",
			StartedAt: d.StartTime.UTC(),
			Uptime:    uptime.String(),
			Storage:   d.StorageMode,
			Version:   d.Version,
			Commit:    d.Commit,
			BuildDate: d.BuildDate,
			GoVersion: d.GoVersion,
		})
	}
}
