package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/moontide/werebot/internal/database"
	"github.com/moontide/werebot/internal/store"
)

func TestHandleHealth(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := handleHealth(logger, store.New(db))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got := body["sqlite"].Status; got != "ok" {
		t.Errorf("sqlite = %q, want ok", got)
	}

	// A closed database fails the check.
	db.Close()
	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	body = HealthResponse{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got := body["sqlite"].Status; got != "error" {
		t.Errorf("sqlite = %q, want error", got)
	}
}
