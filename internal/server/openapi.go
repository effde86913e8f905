package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/moontide/werebot/internal/game"
	"github.com/moontide/werebot/internal/store"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Werebot API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("HTTP surface for the werewolf game engine.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/command
	postCommand, _ := r.NewOperationContext(http.MethodPost, "/api/command")
	postCommand.SetSummary("Submit a game command")
	postCommand.SetDescription("Routes one chat command (host, join, vote, night actions, ...) through the engine and returns the synchronous reply.")
	postCommand.AddReqStructure(CommandRequest{})
	postCommand.AddRespStructure(CommandResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postCommand.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postCommand)

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE message stream")
	getEvents.SetDescription("Server-Sent Events stream of engine output. Pass exactly one of group or player as query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	getEvents.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(getEvents)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postLogout.SetSummary("Admin logout")
	postLogout.SetDescription("Clears admin session and cookie.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/admin/rooms
	listRooms, _ := r.NewOperationContext(http.MethodGet, "/api/admin/rooms")
	listRooms.SetSummary("List live rooms")
	listRooms.SetDescription("Returns every live room with phase and activity data. Requires admin_session cookie.")
	listRooms.AddRespStructure([]game.RoomSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	listRooms.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listRooms)

	// GET /api/admin/archives
	listArchives, _ := r.NewOperationContext(http.MethodGet, "/api/admin/archives")
	listArchives.SetSummary("List archived games")
	listArchives.SetDescription("Returns finished games, newest first. Requires admin_session cookie.")
	listArchives.AddRespStructure([]store.ArchiveSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	listArchives.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listArchives)

	// GET /api/admin/archives/{code}
	getArchive, _ := r.NewOperationContext(http.MethodGet, "/api/admin/archives/{code}")
	getArchive.SetSummary("Get archived game")
	getArchive.SetDescription("Returns the full snapshot of an archived game. Requires admin_session cookie.")
	getArchive.AddReqStructure(struct {
		Code string `path:"code"`
	}{})
	getArchive.AddRespStructure(game.Room{}, openapi.WithHTTPStatus(http.StatusOK))
	getArchive.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getArchive.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getArchive)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
