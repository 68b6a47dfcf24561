package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"recap/internal/queue"
)

func newTestAPIServer(t *testing.T) (*apiServer, *Daemon) {
	t.Helper()
	cfg := testConfig(t)
	cfg.Paths.APIBind = "127.0.0.1:0"
	daemon := newTestDaemon(t, cfg)
	if daemon.api == nil {
		t.Fatal("api server not constructed despite bind address")
	}
	return daemon.api, daemon
}

func TestAPIHealthEndpoint(t *testing.T) {
	api, _ := newTestAPIServer(t)

	rec := httptest.NewRecorder()
	api.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		Status string `json:"status"`
		Queue  struct {
			Total int `json:"total"`
		} `json:"queue"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Status != "ok" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestAPIVideosFilterAndDetail(t *testing.T) {
	api, daemon := newTestAPIServer(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	stored, err := daemon.store.NewVideo(ctx, &queue.Video{
		VideoID:      "vid1",
		ChannelName:  "Tech Weekly",
		Title:        "First",
		Status:       queue.StatusCompleted,
		FinalSummary: "the summary text",
	})
	if err != nil {
		t.Fatalf("NewVideo: %v", err)
	}
	if _, err := daemon.store.NewVideo(ctx, &queue.Video{
		VideoID: "vid2",
		Status:  queue.StatusPending,
	}); err != nil {
		t.Fatalf("NewVideo: %v", err)
	}

	rec := httptest.NewRecorder()
	api.handleVideos(rec, httptest.NewRequest(http.MethodGet, "/api/videos?status=completed", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var listing struct {
		Videos []map[string]any `json:"videos"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listing.Videos) != 1 {
		t.Fatalf("got %d videos, want 1", len(listing.Videos))
	}
	if _, leaked := listing.Videos[0]["final_summary"]; leaked {
		t.Fatal("listing should not include full summaries")
	}

	rec = httptest.NewRecorder()
	api.handleVideo(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/videos/%d", stored.ID), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("detail status = %d", rec.Code)
	}
	var detail map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail["final_summary"] != "the summary text" {
		t.Fatalf("detail = %v", detail)
	}
}

func TestAPIVideosRejectsUnknownStatus(t *testing.T) {
	api, _ := newTestAPIServer(t)

	rec := httptest.NewRecorder()
	api.handleVideos(rec, httptest.NewRequest(http.MethodGet, "/api/videos?status=bogus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAPIVideoNotFound(t *testing.T) {
	api, _ := newTestAPIServer(t)

	rec := httptest.NewRecorder()
	api.handleVideo(rec, httptest.NewRequest(http.MethodGet, "/api/videos/9999", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
