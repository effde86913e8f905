package server

import (
	"net/http"

	"github.com/moontide/werebot/internal/store"
)

const adminCookieName = "admin_session"

// adminFromRequest reads the admin_session cookie and looks up the session.
func adminFromRequest(r *http.Request, st *store.SQLiteStore) (store.AdminSession, error) {
	cookie, err := r.Cookie(adminCookieName)
	if err != nil || cookie.Value == "" {
		return store.AdminSession{}, http.ErrNoCookie
	}
	return st.AdminFromSession(r.Context(), cookie.Value)
}

func adminAuthMiddleware(st *store.SQLiteStore) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := adminFromRequest(r, st); err != nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
