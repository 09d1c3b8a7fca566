package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/mw"
)

func init() { Register(registerPreview) }

// The preview endpoint calls a third-party proxy on every request, so it is
// rate limited per client IP.
func registerPreview(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.PreviewBurst,
		RefillPerIPPerMin: d.PreviewPerMin,
		MaxEntries:        10_000,
		TrustProxy:        d.TrustProxy,
	}, d.Logger)

	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger), limit).Get("/api/preview", handlers.Preview(d))
}
