package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/megamenu/internal/httpserver/deps"
	"github.com/MrSnakeDoc/megamenu/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/megamenu/internal/httpserver/mw"
)

func init() { Register(registerReload) }

// POST only: a reload fans out to the whole cluster when Redis is enabled.
func registerReload(r chi.Router, d deps.Deps) {
	guard := []Middleware{
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	}
	r.With(guard...).Post("/reload", handlers.Reload(d))
}
