package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/megamenu/internal/httpserver/deps"
	"github.com/MrSnakeDoc/megamenu/internal/logger"
	"github.com/MrSnakeDoc/megamenu/internal/utils"
)

type reloadResponse struct {
	Triggered bool  `json:"triggered"`
	Broadcast bool  `json:"broadcast"`
	Receivers int64 `json:"receivers,omitempty"`
}

// Reload triggers a refresh of this instance and, when Redis is enabled,
// asks the other instances to refresh too.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remoteIP := utils.ClientIP(r, d.TrustProxy)

		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual reload triggered via endpoint",
				logger.String("remote_ip", remoteIP))
		default:
			d.Logger.Warn("menu reload already pending",
				logger.String("remote_ip", remoteIP))
			writeJSON(w, http.StatusTooManyRequests, reloadResponse{})
			return
		}

		resp := reloadResponse{Triggered: true}
		if d.Store != nil {
			// Detached from the request so a client disconnect does not cancel the broadcast.
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 2*time.Second)
			n, err := d.Store.PublishReload(ctx, d.Instance)
			cancel()
			if err != nil {
				d.Logger.Warn("failed to broadcast reload", logger.Error(err))
			} else {
				resp.Broadcast = true
				resp.Receivers = n
			}
		}

		writeJSON(w, http.StatusAccepted, resp)
	}
}
