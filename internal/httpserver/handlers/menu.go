package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/megamenu/internal/httpserver/deps"
)

// Menu serves the assembled navigation tree. The tree is rebuilt from the
// latest snapshot on every request.
func Menu(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.MenuIndex.Snapshot()
		tree := snap.Tree()

		if !snap.FetchedAt.IsZero() {
			w.Header().Set("X-Menu-Refreshed-At", snap.FetchedAt.UTC().Format(time.RFC3339))
		}
		if snap.Degraded() {
			w.Header().Set("X-Menu-Degraded", "true")
		}
		writeJSON(w, http.StatusOK, tree)
	}
}
