package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/megamenu/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready      bool   `json:"ready"`
	LastReload string `json:"last_reload,omitempty"`
}

// Readyz reports ready once the first refresh has completed,
// whether or not its sources degraded.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.MenuIndex.Ready() {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{
			Ready:      true,
			LastReload: d.MenuIndex.LastReload().UTC().Format(time.RFC3339),
		})
	}
}
