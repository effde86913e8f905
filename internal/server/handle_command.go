package server

import (
	"net/http"
	"strings"

	"github.com/moontide/werebot/internal/game"
)

// CommandRequest is one inbound chat message for the engine.
type CommandRequest struct {
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	GroupID    string `json:"groupId,omitempty"`
	Text       string `json:"text"`
}

// CommandResponse carries the synchronous reply to the sender. Broadcasts and
// whispers triggered by the command flow through the event stream instead.
type CommandResponse struct {
	Reply string `json:"reply"`
}

func handleCommand(manager *game.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CommandRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.SenderID == "" || strings.TrimSpace(req.Text) == "" {
			writeError(w, http.StatusBadRequest, "senderId and text are required")
			return
		}

		cmd, ok := game.ParseCommand(req.SenderID, req.SenderName, req.GroupID, req.Text)
		if !ok {
			writeError(w, http.StatusBadRequest, "empty command")
			return
		}

		reply := manager.HandleCommand(r.Context(), cmd)
		writeJSON(w, http.StatusOK, CommandResponse{Reply: reply})
	}
}
