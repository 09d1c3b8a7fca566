package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/yodda/internal/domain"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Count  *int   `json:"count,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports storage health and entity counts.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		links := d.Links.Snapshot()
		subs := d.Subscriptions.List()

		folderCount := len(links.Folders)
		linkCount := len(links.Links)
		subCount := len(subs)
		upcoming := len(domain.UpcomingRenewals(subs, d.Now()))

		components := map[string]componentStatus{
			"storage":       checkStorage(r, d),
			"folders":       {OK: true, Count: &folderCount},
			"links":         {OK: true, Count: &linkCount},
			"subscriptions": {OK: true, Count: &subCount},
			"renewals":      {OK: true, Mode: "next-7-days", Count: &upcoming},
			"previews":      {OK: d.Enricher != nil, Mode: previewMode(d)},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     determineStatus(components),
			Components: components,
		})
	}
}

func determineStatus(components map[string]componentStatus) string {
	if s, ok := components["storage"]; ok && !s.OK {
		return "degraded" // changes are kept in memory only
	}
	return "ok"
}

func checkStorage(r *http.Request, d deps.Deps) componentStatus {
	if d.Storage == nil {
		return componentStatus{
			OK:     true,
			Mode:   d.StorageMode,
			Impact: "state-lost-on-restart",
		}
	}
	if err := pingStorage(r.Context(), d); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.StorageMode,
			Impact: "changes-not-persisted",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true, Mode: d.StorageMode}
}

func previewMode(d deps.Deps) string {
	if d.Enricher == nil {
		return "on-demand"
	}
	return "background+on-demand"
}
