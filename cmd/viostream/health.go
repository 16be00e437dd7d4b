package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rickgao/vio-data/internal/connection"
	"github.com/rickgao/vio-data/internal/model"
)

// healthSource is what the health handler reports on.
type healthSource interface {
	State() connection.State
	Stats() connection.Stats
	Latest() *model.MarketInstance
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(path string, src healthSource, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		stats := src.Stats()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		// Check listener
		health.Components["listener"] = map[string]any{
			"state":       stats.State.String(),
			"connects":    stats.Connects,
			"reconnects":  stats.Reconnects,
			"updates":     stats.Updates,
			"subscribers": stats.Subscribers,
		}
		switch stats.State {
		case connection.StateStreaming:
		case connection.StateStopped:
			health.Status = "unhealthy"
		default:
			health.Status = "degraded"
		}

		// Check latest snapshot
		if latest := src.Latest(); latest != nil {
			health.Components["latest_market"] = map[string]any{
				"id":          latest.ID,
				"captured_at": latest.ScanInfo.CapturedAt.Format(time.RFC3339),
				"items":       latest.Len(),
			}
		} else {
			health.Components["latest_market"] = "none"
		}

		// Set response
		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(health); err != nil {
			logger.Debug("write health response", "error", err)
		}
	})

	return mux
}
