package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yodda/internal/logger"
)

type reloadResponse struct {
	Reminders string `json:"reminders"`
	Import    string `json:"import"`
}

// Reload triggers an immediate renewal reminder run and, when an import file
// is configured, a bookmark import.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := reloadResponse{
			Reminders: trigger(d.ReminderTrigger),
			Import:    trigger(d.ImportTrigger),
		}

		d.Logger.Info("manual reload requested",
			logger.String("remote_ip", r.RemoteAddr),
			logger.String("reminders", resp.Reminders),
			logger.String("import", resp.Import))

		status := http.StatusAccepted
		if resp.Reminders != "triggered" && resp.Import != "triggered" {
			status = http.StatusTooManyRequests
		}
		writeJSON(w, status, resp)
	}
}

// trigger does a non-blocking send so a run already queued is not doubled.
func trigger(ch chan struct{}) string {
	if ch == nil {
		return "disabled"
	}
	select {
	case ch <- struct{}{}:
		return "triggered"
	default:
		return "in-progress"
	}
}
