package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/yodda/internal/httpserver/deps"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/yodda/internal/httpserver/mw"
)

func init() { Register(registerSubscriptions) }

func registerSubscriptions(r chi.Router, d deps.Deps) {
	api := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))

	api.Route("/api/subscriptions", func(r chi.Router) {
		r.Get("/", handlers.ListSubscriptions(d))
		r.Post("/", handlers.CreateSubscription(d))
		r.Get("/{id}", handlers.GetSubscription(d))
		r.Patch("/{id}", handlers.UpdateSubscription(d))
		r.Delete("/{id}", handlers.DeleteSubscription(d))
	})
	api.Get("/api/spending", handlers.Spending(d))
}
