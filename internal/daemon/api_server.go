package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recap/internal/config"
	"recap/internal/logging"
	"recap/internal/queue"
	"recap/internal/summarize"
)

// apiServer exposes a read-only JSON view of the queue for local tooling.
type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logging.WithComponent(logger, "api"),
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/videos", srv.handleVideos)
	mux.HandleFunc("/api/videos/", srv.handleVideo)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", "address", listener.Addr().String())
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	health, err := s.daemon.store.Health(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "queue unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"queue":  healthPayload(health),
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]any{
		"running":    status.Running,
		"queue_db":   status.QueueDBPath,
		"lock_file":  status.LockFilePath,
		"queue":      healthPayload(status.Queue),
		"last_error": status.LastError,
	})
}

func (s *apiServer) handleVideos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var statuses []queue.Status
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		for _, value := range strings.Split(raw, ",") {
			status, ok := queue.ParseStatus(value)
			if !ok {
				s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", value))
				return
			}
			statuses = append(statuses, status)
		}
	}

	videos, err := s.daemon.store.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "queue unavailable")
		return
	}

	payload := make([]map[string]any, 0, len(videos))
	for _, video := range videos {
		payload = append(payload, videoPayload(video, false))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"videos": payload})
}

func (s *apiServer) handleVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	idRaw := strings.TrimPrefix(r.URL.Path, "/api/videos/")
	id, err := strconv.ParseInt(idRaw, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid video id")
		return
	}

	video, err := s.daemon.store.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "queue unavailable")
		return
	}
	if video == nil {
		s.writeError(w, http.StatusNotFound, "video not found")
		return
	}
	s.writeJSON(w, http.StatusOK, videoPayload(video, true))
}

func healthPayload(health queue.HealthSummary) map[string]any {
	return map[string]any{
		"total":      health.Total,
		"pending":    health.Pending,
		"processing": health.Processing,
		"completed":  health.Completed,
		"failed":     health.Failed,
	}
}

func videoPayload(video *queue.Video, includeSummary bool) map[string]any {
	payload := map[string]any{
		"id":           video.ID,
		"video_id":     video.VideoID,
		"channel_id":   video.ChannelID,
		"channel_name": video.ChannelName,
		"title":        video.Title,
		"url":          video.URL,
		"status":       string(video.Status),
		"created_at":   video.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":   video.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if !video.PublishedAt.IsZero() {
		payload["published_at"] = video.PublishedAt.UTC().Format(time.RFC3339)
	}
	if video.ErrorMessage != "" {
		payload["error"] = video.ErrorMessage
	}
	if video.SummaryMethod != "" {
		payload["summarization_method"] = video.SummaryMethod
		payload["fallback_used"] = video.FallbackUsed
		payload["cost_estimate"] = video.CostEstimate
		payload["processing_time_seconds"] = video.ProcessingSeconds
	}
	if video.NotifiedAt != nil {
		payload["notified_at"] = video.NotifiedAt.UTC().Format(time.RFC3339)
	}
	if includeSummary {
		payload["final_summary"] = video.FinalSummary
		payload["transcript_path"] = video.TranscriptPath
		payload["transcript_chars"] = video.TranscriptChars
		if usage, err := summarize.DecodeUsageJSON(video.TokenUsageJSON); err == nil && len(usage) > 0 {
			payload["token_usage"] = usage
		}
	}
	return payload
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("could not encode api response", "error", err)
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
