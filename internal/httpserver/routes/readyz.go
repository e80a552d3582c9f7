package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/megamenu/internal/httpserver/deps"
	"github.com/MrSnakeDoc/megamenu/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/megamenu/internal/httpserver/mw"
)

func init() { Register(registerProbes) }

// Liveness stays open to every caller; readiness is CIDR guarded.
func registerProbes(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Get("/readyz", handlers.Readyz(d))
}
