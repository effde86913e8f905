package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/moontide/werebot/internal/game"
	"github.com/moontide/werebot/internal/store"
)

func handleAdminListRooms(manager *game.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, manager.Summaries())
	}
}

func handleAdminListArchives(st *store.SQLiteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		archives, err := st.ListArchives(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if archives == nil {
			archives = []store.ArchiveSummary{}
		}
		writeJSON(w, http.StatusOK, archives)
	}
}

func handleAdminGetArchive(st *store.SQLiteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		room, err := st.GetArchive(r.Context(), code)
		if errors.Is(err, game.ErrNotFound) {
			writeError(w, http.StatusNotFound, "archive not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}
