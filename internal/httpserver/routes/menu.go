package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/megamenu/internal/httpserver/deps"
	"github.com/MrSnakeDoc/megamenu/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/megamenu/internal/httpserver/mw"
)

func init() { Register(registerMenu) }

func registerMenu(r chi.Router, d deps.Deps) {
	r.Route("/api/menu", func(r chi.Router) {
		r.Get("/", handlers.Menu(d))
		r.With(mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.SearchBurst,
			RefillPerIPPerMin: d.SearchRefillPerMin,
			MaxEntries:        10000,
			TrustProxy:        d.TrustProxy,
		})).Get("/search", handlers.Search(d))
	})
}
