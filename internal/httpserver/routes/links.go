package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/mw"
)

func init() { Register(registerLinks) }

func registerLinks(r chi.Router, d deps.Deps) {
	api := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))

	api.Get("/api/state/links", handlers.LinkState(d))

	api.Route("/api/folders", func(r chi.Router) {
		r.Post("/", handlers.CreateFolder(d))
		r.Put("/order", handlers.ReorderFolders(d))
		r.Patch("/{id}", handlers.RenameFolder(d))
		r.Delete("/{id}", handlers.DeleteFolder(d))
	})

	api.Route("/api/links", func(r chi.Router) {
		r.Get("/", handlers.ListLinks(d))
		r.Post("/", handlers.CreateLink(d))
		r.Get("/{id}", handlers.GetLink(d))
		r.Patch("/{id}", handlers.UpdateLink(d))
		r.Delete("/{id}", handlers.DeleteLink(d))
	})
}
