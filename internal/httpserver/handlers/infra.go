package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/megamenu/internal/domain"
	"github.com/MrSnakeDoc/megamenu/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Count      *int   `json:"count,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
	Cluster    []domain.RefreshStatus     `json:"cluster,omitempty"`
}

// Infra reports per-source health, counts, and the Redis link.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.MenuIndex.Snapshot()
		lastReload := "never"
		if d.MenuIndex.Ready() {
			lastReload = snap.FetchedAt.Format("2006-01-02 15:04:05")
		}

		records := len(snap.Records)
		sites := len(snap.Sites)

		components := map[string]componentStatus{
			"navigation": sourceStatus(records, lastReload, snap.NavErr),
			"sites":      sourceStatus(sites, lastReload, snap.SitesErr),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		redisStatus, cluster := checkRedis(ctx, d)
		components["redis"] = redisStatus

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(d.MenuIndex.Ready(), components),
			Components: components,
			Cluster:    cluster,
		})
	}
}

func sourceStatus(count int, lastReload string, err error) componentStatus {
	st := componentStatus{
		OK:         err == nil,
		Count:      &count,
		LastReload: lastReload,
	}
	if err != nil {
		st.Error = err.Error()
		st.Impact = "empty-branch"
	}
	return st
}

// overallStatus is critical before the first refresh or without navigation,
// degraded when any other component is down, ok otherwise.
func overallStatus(ready bool, components map[string]componentStatus) string {
	if !ready || !components["navigation"].OK {
		return "critical"
	}
	for _, c := range components {
		if !c.OK {
			return "degraded"
		}
	}
	return "ok"
}

func checkRedis(ctx context.Context, d deps.Deps) (componentStatus, []domain.RefreshStatus) {
	if d.Store == nil {
		return componentStatus{
			OK:     true,
			Mode:   "disabled",
			Impact: "reload-broadcast-disabled",
		}, nil
	}

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "reload-broadcast-unavailable",
			Error:  err.Error(),
		}, nil
	}

	cluster, err := d.Store.GetRefreshStatuses(ctx)
	if err != nil {
		return componentStatus{
			OK:    true,
			Mode:  "optimal",
			Error: err.Error(),
		}, nil
	}

	return componentStatus{
		OK:   true,
		Mode: "optimal",
	}, cluster
}
