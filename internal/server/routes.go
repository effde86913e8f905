package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/moontide/werebot/internal/game"
	"github.com/moontide/werebot/internal/store"
)

func addRoutes(r chi.Router, logger *slog.Logger, st *store.SQLiteStore, manager *game.Manager, broker *Broker) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Werebot API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, st))

	r.Post("/api/command", handleCommand(manager))
	r.Get("/api/events", handleEvents(broker))

	r.Post("/api/admin/login", handleAdminLogin(st))
	r.Post("/api/admin/logout", handleAdminLogout(st))
	r.Get("/api/admin/me", handleAdminMe(st))

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(adminAuthMiddleware(st))
		r.Get("/rooms", handleAdminListRooms(manager))
		r.Get("/archives", handleAdminListArchives(st))
		r.Get("/archives/{code}", handleAdminGetArchive(st))
	})
}
