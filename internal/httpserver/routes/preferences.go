package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/mw"
)

func init() { Register(registerPreferences) }

func registerPreferences(r chi.Router, d deps.Deps) {
	api := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))

	api.Get("/api/bootstrap", handlers.Bootstrap(d))
	api.Get("/api/preferences/language", handlers.GetLanguage(d))
	api.Put("/api/preferences/language", handlers.SetLanguage(d))
	api.Get("/api/preferences/theme", handlers.GetTheme(d))
	api.Put("/api/preferences/theme", handlers.SetTheme(d))
	api.Get("/api/profile", handlers.GetProfile(d))
	api.Patch("/api/profile", handlers.UpdateProfile(d))
}
