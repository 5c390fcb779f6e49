package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/ragops/planner/internal/api/handlers"
	mw "github.com/ragops/planner/internal/api/middleware"
)

type Dependencies struct {
	PlansHandler *handlers.PlansHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(10, 20))
	r.Use(chimid.Compress(5))

	hh := handlers.NewHealthHandler()
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/plans", func(pr chi.Router) {
			pr.Get("/", dep.PlansHandler.List)
			pr.Post("/", dep.PlansHandler.Create)
			pr.Post("/resolve", dep.PlansHandler.ResolveNow)
			pr.Get("/{id}", dep.PlansHandler.Get)
			pr.Get("/{id}/env", dep.PlansHandler.Env)
		})
	})

	return r
}
