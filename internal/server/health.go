package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/moontide/werebot/internal/store"
)

// HealthResponse maps each dependency to its check result.
type HealthResponse map[string]HealthResult

type HealthResult struct {
	Status string `json:"status"`
}

func handleHealth(logger *slog.Logger, st *store.SQLiteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := HealthResponse{
			"sqlite": {Status: "ok"},
		}
		status := http.StatusOK

		if err := st.Ping(ctx); err != nil {
			logger.Error("health check failed", "name", "sqlite", "error", err)
			checks["sqlite"] = HealthResult{Status: "error"}
			status = http.StatusServiceUnavailable
		}

		writeJSON(w, status, checks)
	}
}
